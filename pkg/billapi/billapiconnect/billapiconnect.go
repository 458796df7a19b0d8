// Package billapiconnect wires the billminder.v1 services to Connect
// handlers and clients. Messages are plain Go structs carried by
// billapi.Codec.
package billapiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billminder/pkg/billapi"
)

const (
	// BillServiceName is the fully-qualified name of the BillService service.
	BillServiceName = "billminder.v1.BillService"
	// AgentServiceName is the fully-qualified name of the AgentService service.
	AgentServiceName = "billminder.v1.AgentService"
)

const (
	BillServiceCreateBillProcedure    = "/billminder.v1.BillService/CreateBill"
	BillServiceGetBillProcedure       = "/billminder.v1.BillService/GetBill"
	BillServiceUpdateBillProcedure    = "/billminder.v1.BillService/UpdateBill"
	BillServiceDeleteBillProcedure    = "/billminder.v1.BillService/DeleteBill"
	BillServiceListBillsProcedure     = "/billminder.v1.BillService/ListBills"
	BillServiceListUpcomingProcedure  = "/billminder.v1.BillService/ListUpcoming"
	BillServiceListOverdueProcedure   = "/billminder.v1.BillService/ListOverdue"
	BillServiceGetAlertsProcedure     = "/billminder.v1.BillService/GetAlerts"
	BillServicePayBillProcedure       = "/billminder.v1.BillService/PayBill"
	BillServicePayBillByNameProcedure = "/billminder.v1.BillService/PayBillByName"

	AgentServiceChatProcedure = "/billminder.v1.AgentService/Chat"
)

// BillServiceClient is a client for the billminder.v1.BillService service.
type BillServiceClient interface {
	CreateBill(context.Context, *connect.Request[billapi.CreateBillRequest]) (*connect.Response[billapi.CreateBillResponse], error)
	GetBill(context.Context, *connect.Request[billapi.GetBillRequest]) (*connect.Response[billapi.GetBillResponse], error)
	UpdateBill(context.Context, *connect.Request[billapi.UpdateBillRequest]) (*connect.Response[billapi.UpdateBillResponse], error)
	DeleteBill(context.Context, *connect.Request[billapi.DeleteBillRequest]) (*connect.Response[billapi.DeleteBillResponse], error)
	ListBills(context.Context, *connect.Request[billapi.ListBillsRequest]) (*connect.Response[billapi.ListBillsResponse], error)
	ListUpcoming(context.Context, *connect.Request[billapi.ListUpcomingRequest]) (*connect.Response[billapi.ListUpcomingResponse], error)
	ListOverdue(context.Context, *connect.Request[billapi.ListOverdueRequest]) (*connect.Response[billapi.ListOverdueResponse], error)
	GetAlerts(context.Context, *connect.Request[billapi.GetAlertsRequest]) (*connect.Response[billapi.GetAlertsResponse], error)
	PayBill(context.Context, *connect.Request[billapi.PayBillRequest]) (*connect.Response[billapi.PayBillResponse], error)
	PayBillByName(context.Context, *connect.Request[billapi.PayBillByNameRequest]) (*connect.Response[billapi.PayBillByNameResponse], error)
}

// BillServiceHandler is implemented by servers of billminder.v1.BillService.
// The signatures match BillServiceClient, so a handler can be used
// in-process wherever a client is expected.
type BillServiceHandler = BillServiceClient

// NewBillServiceClient constructs a client for billminder.v1.BillService.
// baseURL is the server root, e.g. http://localhost:8080.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(billapi.JSONCodec)}, opts...)
	return &billServiceClient{
		createBill:    connect.NewClient[billapi.CreateBillRequest, billapi.CreateBillResponse](httpClient, baseURL+BillServiceCreateBillProcedure, opts...),
		getBill:       connect.NewClient[billapi.GetBillRequest, billapi.GetBillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
		updateBill:    connect.NewClient[billapi.UpdateBillRequest, billapi.UpdateBillResponse](httpClient, baseURL+BillServiceUpdateBillProcedure, opts...),
		deleteBill:    connect.NewClient[billapi.DeleteBillRequest, billapi.DeleteBillResponse](httpClient, baseURL+BillServiceDeleteBillProcedure, opts...),
		listBills:     connect.NewClient[billapi.ListBillsRequest, billapi.ListBillsResponse](httpClient, baseURL+BillServiceListBillsProcedure, opts...),
		listUpcoming:  connect.NewClient[billapi.ListUpcomingRequest, billapi.ListUpcomingResponse](httpClient, baseURL+BillServiceListUpcomingProcedure, opts...),
		listOverdue:   connect.NewClient[billapi.ListOverdueRequest, billapi.ListOverdueResponse](httpClient, baseURL+BillServiceListOverdueProcedure, opts...),
		getAlerts:     connect.NewClient[billapi.GetAlertsRequest, billapi.GetAlertsResponse](httpClient, baseURL+BillServiceGetAlertsProcedure, opts...),
		payBill:       connect.NewClient[billapi.PayBillRequest, billapi.PayBillResponse](httpClient, baseURL+BillServicePayBillProcedure, opts...),
		payBillByName: connect.NewClient[billapi.PayBillByNameRequest, billapi.PayBillByNameResponse](httpClient, baseURL+BillServicePayBillByNameProcedure, opts...),
	}
}

type billServiceClient struct {
	createBill    *connect.Client[billapi.CreateBillRequest, billapi.CreateBillResponse]
	getBill       *connect.Client[billapi.GetBillRequest, billapi.GetBillResponse]
	updateBill    *connect.Client[billapi.UpdateBillRequest, billapi.UpdateBillResponse]
	deleteBill    *connect.Client[billapi.DeleteBillRequest, billapi.DeleteBillResponse]
	listBills     *connect.Client[billapi.ListBillsRequest, billapi.ListBillsResponse]
	listUpcoming  *connect.Client[billapi.ListUpcomingRequest, billapi.ListUpcomingResponse]
	listOverdue   *connect.Client[billapi.ListOverdueRequest, billapi.ListOverdueResponse]
	getAlerts     *connect.Client[billapi.GetAlertsRequest, billapi.GetAlertsResponse]
	payBill       *connect.Client[billapi.PayBillRequest, billapi.PayBillResponse]
	payBillByName *connect.Client[billapi.PayBillByNameRequest, billapi.PayBillByNameResponse]
}

func (c *billServiceClient) CreateBill(ctx context.Context, req *connect.Request[billapi.CreateBillRequest]) (*connect.Response[billapi.CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *billServiceClient) GetBill(ctx context.Context, req *connect.Request[billapi.GetBillRequest]) (*connect.Response[billapi.GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *billServiceClient) UpdateBill(ctx context.Context, req *connect.Request[billapi.UpdateBillRequest]) (*connect.Response[billapi.UpdateBillResponse], error) {
	return c.updateBill.CallUnary(ctx, req)
}

func (c *billServiceClient) DeleteBill(ctx context.Context, req *connect.Request[billapi.DeleteBillRequest]) (*connect.Response[billapi.DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

func (c *billServiceClient) ListBills(ctx context.Context, req *connect.Request[billapi.ListBillsRequest]) (*connect.Response[billapi.ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *billServiceClient) ListUpcoming(ctx context.Context, req *connect.Request[billapi.ListUpcomingRequest]) (*connect.Response[billapi.ListUpcomingResponse], error) {
	return c.listUpcoming.CallUnary(ctx, req)
}

func (c *billServiceClient) ListOverdue(ctx context.Context, req *connect.Request[billapi.ListOverdueRequest]) (*connect.Response[billapi.ListOverdueResponse], error) {
	return c.listOverdue.CallUnary(ctx, req)
}

func (c *billServiceClient) GetAlerts(ctx context.Context, req *connect.Request[billapi.GetAlertsRequest]) (*connect.Response[billapi.GetAlertsResponse], error) {
	return c.getAlerts.CallUnary(ctx, req)
}

func (c *billServiceClient) PayBill(ctx context.Context, req *connect.Request[billapi.PayBillRequest]) (*connect.Response[billapi.PayBillResponse], error) {
	return c.payBill.CallUnary(ctx, req)
}

func (c *billServiceClient) PayBillByName(ctx context.Context, req *connect.Request[billapi.PayBillByNameRequest]) (*connect.Response[billapi.PayBillByNameResponse], error) {
	return c.payBillByName.CallUnary(ctx, req)
}

// NewBillServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodecs(opts)
	routes := map[string]http.Handler{
		BillServiceCreateBillProcedure:    connect.NewUnaryHandler(BillServiceCreateBillProcedure, svc.CreateBill, opts...),
		BillServiceGetBillProcedure:       connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...),
		BillServiceUpdateBillProcedure:    connect.NewUnaryHandler(BillServiceUpdateBillProcedure, svc.UpdateBill, opts...),
		BillServiceDeleteBillProcedure:    connect.NewUnaryHandler(BillServiceDeleteBillProcedure, svc.DeleteBill, opts...),
		BillServiceListBillsProcedure:     connect.NewUnaryHandler(BillServiceListBillsProcedure, svc.ListBills, opts...),
		BillServiceListUpcomingProcedure:  connect.NewUnaryHandler(BillServiceListUpcomingProcedure, svc.ListUpcoming, opts...),
		BillServiceListOverdueProcedure:   connect.NewUnaryHandler(BillServiceListOverdueProcedure, svc.ListOverdue, opts...),
		BillServiceGetAlertsProcedure:     connect.NewUnaryHandler(BillServiceGetAlertsProcedure, svc.GetAlerts, opts...),
		BillServicePayBillProcedure:       connect.NewUnaryHandler(BillServicePayBillProcedure, svc.PayBill, opts...),
		BillServicePayBillByNameProcedure: connect.NewUnaryHandler(BillServicePayBillByNameProcedure, svc.PayBillByName, opts...),
	}
	return "/" + BillServiceName + "/", route(routes)
}

// AgentServiceClient is a client for the billminder.v1.AgentService service.
type AgentServiceClient interface {
	Chat(context.Context, *connect.Request[billapi.ChatRequest]) (*connect.Response[billapi.ChatResponse], error)
}

// AgentServiceHandler is implemented by servers of billminder.v1.AgentService.
type AgentServiceHandler = AgentServiceClient

// NewAgentServiceClient constructs a client for billminder.v1.AgentService.
func NewAgentServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AgentServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(billapi.JSONCodec)}, opts...)
	return &agentServiceClient{
		chat: connect.NewClient[billapi.ChatRequest, billapi.ChatResponse](httpClient, baseURL+AgentServiceChatProcedure, opts...),
	}
}

type agentServiceClient struct {
	chat *connect.Client[billapi.ChatRequest, billapi.ChatResponse]
}

func (c *agentServiceClient) Chat(ctx context.Context, req *connect.Request[billapi.ChatRequest]) (*connect.Response[billapi.ChatResponse], error) {
	return c.chat.CallUnary(ctx, req)
}

// NewAgentServiceHandler builds an HTTP handler for billminder.v1.AgentService.
func NewAgentServiceHandler(svc AgentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodecs(opts)
	routes := map[string]http.Handler{
		AgentServiceChatProcedure: connect.NewUnaryHandler(AgentServiceChatProcedure, svc.Chat, opts...),
	}
	return "/" + AgentServiceName + "/", route(routes)
}

func withCodecs(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{
		connect.WithCodec(billapi.JSONCodec),
		connect.WithCodec(billapi.JSONCharsetCodec),
	}, opts...)
}

func route(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

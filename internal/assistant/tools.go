package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Tool is a type-erased tool for callers that work with raw JSON
// arguments, such as a chat-completions loop.
type Tool struct {
	Definition
	// Parameters is the JSON schema of the arguments.
	Parameters *jsonschema.Schema
	// Call runs the tool and returns its text reply.
	Call func(ctx context.Context, args json.RawMessage) (string, error)
}

// Tools returns every tool in a stable order.
func (k *Toolkit) Tools() ([]Tool, error) {
	builders := []func() (Tool, error){
		func() (Tool, error) { return newTool(ListBillsDef, k.ListBills) },
		func() (Tool, error) { return newTool(CheckUpcomingDef, k.CheckUpcoming) },
		func() (Tool, error) { return newTool(CheckOverdueDef, k.CheckOverdue) },
		func() (Tool, error) { return newTool(AddBillDef, k.AddBill) },
		func() (Tool, error) { return newTool(MarkPaidDef, k.MarkPaid) },
		func() (Tool, error) { return newTool(DeleteBillDef, k.DeleteBill) },
		func() (Tool, error) { return newTool(AlertsDef, k.Alerts) },
	}

	tools := make([]Tool, 0, len(builders))
	for _, build := range builders {
		t, err := build()
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

func newTool[In any, Out Replier](def Definition, fn func(context.Context, In) (Out, error)) (Tool, error) {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return Tool{}, fmt.Errorf("schema for %s: %w", def.Name, err)
	}
	return Tool{
		Definition: def,
		Parameters: schema,
		Call: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in In
			if len(args) > 0 && string(args) != "null" {
				if err := json.Unmarshal(args, &in); err != nil {
					return "", &ToolError{
						Text: fmt.Sprintf("The arguments for %s were not valid JSON for this tool: %v.", def.Name, err),
						Err:  err,
					}
				}
			}
			out, err := fn(ctx, in)
			if err != nil {
				return "", err
			}
			return out.Reply(), nil
		},
	}, nil
}

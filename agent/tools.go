package agent

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/pipeline"
	"google.golang.org/genai"
)

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

// Tool names.
const (
	ReadPDF       = "read_pdf_content"
	ReadExcel     = "read_excel_transactions"
	ReadCSV       = "read_csv_transactions"
	StockPrice    = "get_current_stock_price"
	UpdateCache   = "update_monthly_cache"
	GetCache      = "get_monthly_cache"
	GenerateChart = "generate_financial_chart"
	UploadFile    = "upload_file"
)

// tool builds a Func from a typed body answering a tool outcome.
func tool(name, description string, params map[string]*genai.Schema, body func(ctx context.Context, args map[string]any) (finasync.Result, error)) *Func {
	decl := &genai.FunctionDeclaration{
		Name:        name,
		Description: description,
	}
	// An object schema without properties is rejected by the API.
	if len(params) > 0 {
		decl.Parameters = &genai.Schema{
			Type:       genai.TypeObject,
			Properties: params,
			Required:   slices.Sorted(maps.Keys(params)),
		}
	}
	return &Func{
		Decl: decl,
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			res, err := body(ctx, args)
			if err != nil {
				res = finasync.Failure(err)
			}
			return &genai.FunctionResponse{ID: id, Name: name, Response: res.Map()}
		},
	}
}

func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("missing argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q is not a string as expected but %T", name, v)
	}
	return s, nil
}

func numberArg(args map[string]any, name string) (float64, error) {
	v, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		d, err := finasync.ParseAmount(n)
		if err != nil {
			return 0, fmt.Errorf("argument %q: %w", name, err)
		}
		return d.InexactFloat64(), nil
	}
	return 0, fmt.Errorf("argument %q is not a number as expected but %T", name, v)
}

var (
	filePath = map[string]*genai.Schema{
		"file_path": {Type: genai.TypeString, Description: "Path of the file to read."},
	}
	amount = func(what string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: what + ", in dollars."}
	}
)

// Tools returns every tool backed by t.
func Tools(t *pipeline.Toolbox) map[string]*Func {
	readWith := func(read func(string) finasync.Result) func(context.Context, map[string]any) (finasync.Result, error) {
		return func(_ context.Context, args map[string]any) (finasync.Result, error) {
			path, err := stringArg(args, "file_path")
			if err != nil {
				return finasync.Result{}, err
			}
			return read(path), nil
		}
	}

	tools := []*Func{
		tool(ReadPDF, "Extracts the text of a PDF document, such as a brokerage statement.", filePath, readWith(t.ReadPDF)),
		tool(ReadExcel, "Reads the first sheet of an Excel workbook and returns it as a markdown table.", filePath, readWith(t.ReadSpreadsheet)),
		tool(ReadCSV, "Reads a CSV file, comma or semicolon separated, and returns it as a markdown table.", filePath, readWith(t.ReadCSV)),

		tool(StockPrice, "Returns the current price of a stock, in dollars.",
			map[string]*genai.Schema{"ticker": {Type: genai.TypeString, Description: "Stock ticker, e.g. AAPL."}},
			func(ctx context.Context, args map[string]any) (finasync.Result, error) {
				ticker, err := stringArg(args, "ticker")
				if err != nil {
					return finasync.Result{}, err
				}
				return t.StockPrice(ctx, ticker), nil
			}),

		tool(UpdateCache, "Records the summary of a category in the monthly cache, replacing the previous one. The first line of the summary must be 'Total: $<value>'.",
			map[string]*genai.Schema{
				"category": {Type: genai.TypeString, Description: "Category of the finding: expenses or investments."},
				"summary":  {Type: genai.TypeString, Description: "The finding."},
			},
			func(ctx context.Context, args map[string]any) (finasync.Result, error) {
				category, err := stringArg(args, "category")
				if err != nil {
					return finasync.Result{}, err
				}
				summary, err := stringArg(args, "summary")
				if err != nil {
					return finasync.Result{}, err
				}
				return t.UpdateCache(ctx, category, summary), nil
			}),

		tool(GetCache, "Returns every finding of the monthly cache, by category.", nil,
			func(ctx context.Context, _ map[string]any) (finasync.Result, error) {
				return t.GetCache(ctx), nil
			}),

		tool(GenerateChart, "Draws a pie chart of expenses, savings and stock value and returns the image path.",
			map[string]*genai.Schema{
				"expenses":    amount("Total expenses"),
				"savings":     amount("Savings, income minus expenses"),
				"stock_value": amount("Value of the stock portfolio"),
			},
			func(_ context.Context, args map[string]any) (finasync.Result, error) {
				var v [3]float64
				for i, name := range []string{"expenses", "savings", "stock_value"} {
					n, err := numberArg(args, name)
					if err != nil {
						return finasync.Result{}, err
					}
					v[i] = n
				}
				return t.RenderChart(v[0], v[1], v[2]), nil
			}),

		tool(UploadFile, "Uploads a local file, such as the chart, to the user's document store and returns its location.",
			map[string]*genai.Schema{"file_path": {Type: genai.TypeString, Description: "Path of the file to upload."}},
			func(ctx context.Context, args map[string]any) (finasync.Result, error) {
				path, err := stringArg(args, "file_path")
				if err != nil {
					return finasync.Result{}, err
				}
				return t.Upload(ctx, path), nil
			}),
	}

	res := make(map[string]*Func, len(tools))
	for _, f := range tools {
		res[f.Decl.Name] = f
	}
	return res
}

// Select returns the named tools, in order.
func Select(tools map[string]*Func, names ...string) []*Func {
	res := make([]*Func, 0, len(names))
	for _, n := range names {
		if f, ok := tools[n]; ok {
			res = append(res, f)
		}
	}
	return res
}

// quote formats an amount for prompts.
func quote(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

package sheets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"auditionsync/internal/services"
)

const (
	component          = "sheets"
	defaultCallTimeout = 30 * time.Second
)

// GoogleConfig configures the Google Sheets backend.
type GoogleConfig struct {
	CredentialsFile string
	TimeoutSeconds  int
}

// GoogleBackend implements Backend with the Sheets v4 API.
type GoogleBackend struct {
	svc     *sheetsapi.Service
	timeout time.Duration
}

// NewGoogleBackend authenticates with a service-account credentials file.
// Extra client options are appended, which tests use to point the client at a
// local endpoint.
func NewGoogleBackend(ctx context.Context, cfg GoogleConfig, opts ...option.ClientOption) (*GoogleBackend, error) {
	clientOpts := make([]option.ClientOption, 0, len(opts)+2)
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(path))
	}
	clientOpts = append(clientOpts, option.WithScopes(sheetsapi.SpreadsheetsScope))
	clientOpts = append(clientOpts, opts...)

	svc, err := sheetsapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new service", "check sheets.credentials_file", err)
	}
	timeout := defaultCallTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &GoogleBackend{svc: svc, timeout: timeout}, nil
}

// Read returns every populated row of the tab. Short rows are not padded.
func (g *GoogleBackend) Read(ctx context.Context, spreadsheetID, tab string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.svc.Spreadsheets.Values.Get(spreadsheetID, QuoteTab(tab)).
		ValueRenderOption("FORMULA").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err, "read", tab)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = cellText(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellText renders a decoded cell. JSON numbers arrive as float64 and are
// printed without an exponent so phone numbers and IDs survive a rewrite.
func cellText(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strings.ToUpper(strconv.FormatBool(v))
	default:
		return fmt.Sprint(v)
	}
}

// Write overwrites the tab starting at A1.
func (g *GoogleBackend) Write(ctx context.Context, spreadsheetID, tab string, rows [][]string, formulae bool) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
	}
	inputOption := "RAW"
	if formulae {
		inputOption = "USER_ENTERED"
	}
	_, err := g.svc.Spreadsheets.Values.Update(spreadsheetID, TabRange(tab), &sheetsapi.ValueRange{Values: values}).
		ValueInputOption(inputOption).
		Context(ctx).
		Do()
	if err != nil {
		return classify(err, "write", tab)
	}
	return nil
}

// Clear removes every value from the tab. Formatting is left alone.
func (g *GoogleBackend) Clear(ctx context.Context, spreadsheetID, tab string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	_, err := g.svc.Spreadsheets.Values.Clear(spreadsheetID, QuoteTab(tab), &sheetsapi.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return classify(err, "clear", tab)
	}
	return nil
}

// Format resets the tab's text styling and applies the row classes in one
// batch update.
func (g *GoogleBackend) Format(ctx context.Context, spreadsheetID, tab string, format Format) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	sheetID, err := g.sheetID(ctx, spreadsheetID, tab)
	if err != nil {
		return err
	}
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{Requests: formatRequests(sheetID, format)}
	if _, err := g.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return classify(err, "format", tab)
	}
	return nil
}

// Tabs lists the tab titles of a spreadsheet in display order.
func (g *GoogleBackend) Tabs(ctx context.Context, spreadsheetID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, classify(err, "list tabs", "")
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil {
			titles = append(titles, sheet.Properties.Title)
		}
	}
	return titles, nil
}

func (g *GoogleBackend) sheetID(ctx context.Context, spreadsheetID, tab string) (int64, error) {
	resp, err := g.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, classify(err, "lookup sheet id", tab)
	}
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == tab {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, services.Wrap(services.ErrValidation, component, "lookup sheet id", fmt.Sprintf("tab %q not found", tab), nil)
}

var (
	subheaderColor  = &sheetsapi.Color{Red: 0.85, Green: 0.85, Blue: 0.85}
	registeredColor = &sheetsapi.Color{Red: 0.85, Green: 0.94, Blue: 0.83}
)

func formatRequests(sheetID int64, format Format) []*sheetsapi.Request {
	reqs := []*sheetsapi.Request{{
		RepeatCell: &sheetsapi.RepeatCellRequest{
			Range:  &sheetsapi.GridRange{SheetId: sheetID, ForceSendFields: []string{"SheetId"}},
			Cell:   &sheetsapi.CellData{UserEnteredFormat: &sheetsapi.CellFormat{}},
			Fields: "userEnteredFormat(textFormat,backgroundColor)",
		},
	}}
	add := func(rows []int, cell *sheetsapi.CellFormat, fields string) {
		for _, row := range rows {
			reqs = append(reqs, &sheetsapi.Request{
				RepeatCell: &sheetsapi.RepeatCellRequest{
					Range:  rowRange(sheetID, row),
					Cell:   &sheetsapi.CellData{UserEnteredFormat: cell},
					Fields: fields,
				},
			})
		}
	}
	add(format.RegisteredRows, &sheetsapi.CellFormat{BackgroundColor: registeredColor}, "userEnteredFormat.backgroundColor")
	add(format.HeaderRows, &sheetsapi.CellFormat{TextFormat: &sheetsapi.TextFormat{Bold: true, FontSize: 14}}, "userEnteredFormat.textFormat")
	add(format.SubheaderRows, &sheetsapi.CellFormat{
		TextFormat:      &sheetsapi.TextFormat{Bold: true},
		BackgroundColor: subheaderColor,
	}, "userEnteredFormat(textFormat,backgroundColor)")
	add(format.InstrumentRows, &sheetsapi.CellFormat{TextFormat: &sheetsapi.TextFormat{Bold: true, Italic: true}}, "userEnteredFormat.textFormat")
	return reqs
}

func rowRange(sheetID int64, row int) *sheetsapi.GridRange {
	return &sheetsapi.GridRange{
		SheetId:         sheetID,
		StartRowIndex:   int64(row),
		EndRowIndex:     int64(row) + 1,
		ForceSendFields: []string{"SheetId", "StartRowIndex"},
	}
}

func classify(err error, operation, tab string) error {
	message := fmt.Sprintf("tab %q", tab)
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return services.Wrap(services.ErrRateLimited, component, operation, message, err)
		case apiErr.Code == http.StatusRequestTimeout || apiErr.Code == http.StatusGatewayTimeout:
			return services.Wrap(services.ErrTimeout, component, operation, message, err)
		case apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusNotFound:
			return services.Wrap(services.ErrValidation, component, operation, message, err)
		default:
			return services.Wrap(services.ErrUnexpected, component, operation, message, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, component, operation, message, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return services.Wrap(services.ErrTimeout, component, operation, message, err)
		}
		return services.Wrap(services.ErrConnection, component, operation, message, err)
	}
	return services.Wrap(services.ErrUnexpected, component, operation, message, err)
}

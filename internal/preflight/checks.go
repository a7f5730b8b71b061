package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"auditionsync/internal/services"
)

const serviceCheckTimeout = 30 * time.Second

// CheckCommerce fetches one page of orders. It uses a 30-second timeout and a
// single attempt.
func CheckCommerce(ctx context.Context, client CommercePinger, initErr error) Result {
	const name = "Commerce API"
	if client == nil {
		return Result{Name: name, Detail: unavailable(initErr)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, serviceCheckTimeout)
	defer cancel()

	if err := client.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeServiceError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckSpreadsheet verifies that the spreadsheet is readable and carries every
// expected tab. Tab names compare exactly, as the sheets API does.
func CheckSpreadsheet(ctx context.Context, name string, client TabLister, initErr error, spreadsheetID string, expected []string) Result {
	if strings.TrimSpace(spreadsheetID) == "" {
		return Result{Name: name, Detail: "spreadsheet_id missing"}
	}
	if client == nil {
		return Result{Name: name, Detail: unavailable(initErr)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, serviceCheckTimeout)
	defer cancel()

	tabs, err := client.Tabs(checkCtx, spreadsheetID)
	if err != nil {
		return Result{Name: name, Detail: summarizeServiceError(err)}
	}
	present := make(map[string]struct{}, len(tabs))
	for _, tab := range tabs {
		present[tab] = struct{}{}
	}
	var missing []string
	for _, tab := range expected {
		if tab == "" {
			continue
		}
		if _, ok := present[tab]; !ok {
			missing = append(missing, fmt.Sprintf("%q", tab))
		}
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: "missing tabs: " + strings.Join(missing, ", ")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d tabs found", len(tabs))}
}

// CheckCredentialsFile verifies the service-account file is readable. An
// empty path falls back to application default credentials and passes.
func CheckCredentialsFile(path string) Result {
	const name = "Sheets credentials"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Passed: true, Detail: "application default credentials"}
	}
	if problem := accessProblem(path, false, unix.R_OK); problem != "" {
		return Result{Name: name, Detail: path + ": " + problem}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies a directory the run writes into.
func CheckDirectoryAccess(name, path string) Result {
	if problem := accessProblem(path, true, unix.R_OK|unix.W_OK|unix.X_OK); problem != "" {
		return Result{Name: name, Detail: path + ": " + problem}
	}
	return Result{Name: name, Passed: true, Detail: path + " is writable"}
}

// accessProblem describes why path is unusable, or returns "" when it is the
// expected kind of entry and the process holds mode.
func accessProblem(path string, wantDir bool, mode uint32) string {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "not found"
	case err != nil:
		return err.Error()
	case wantDir && !info.IsDir():
		return "not a directory"
	case !wantDir && info.IsDir():
		return "is a directory"
	}
	if err := unix.Access(path, mode); err != nil {
		return "permission denied (" + err.Error() + ")"
	}
	return ""
}

func unavailable(err error) string {
	if err == nil {
		return "client unavailable"
	}
	return "client unavailable: " + err.Error()
}

// summarizeServiceError produces a short, operator-facing reason.
func summarizeServiceError(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "timed out waiting for the service"
	}
	if kind := services.Kind(err); kind != "unexpected" {
		return kind + ": " + err.Error()
	}
	return err.Error()
}

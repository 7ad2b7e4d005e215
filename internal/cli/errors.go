package cli

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/txnimport/internal/core"
)

// ReportError writes a failed command's error to w. Errors with a known
// explanation get it, with its support code, on a second line.
func ReportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, core.FormatUserError(err))
	}
}

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices are emitted as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

var Writer io.Writer = os.Stdout

// JSON writes v as one indented document followed by a newline.
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	_, err = fmt.Fprintln(Writer, string(data))
	return err
}

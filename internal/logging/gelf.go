package logging

import (
	"fmt"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGELFWriter dials a Graylog UDP input at addr. Each Write becomes one
// GELF message, so pair it with a handler that writes whole records.
func NewGELFWriter(addr string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("dialing graylog %s: %w", addr, err)
	}
	w.Facility = "simvis"
	return w, nil
}

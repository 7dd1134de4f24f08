package main

import (
	stderrors "errors"
	"fmt"
	"strings"

	"trendscope-backend/dtos"
	"trendscope-backend/services"
)

func validatePayload(p *dtos.BulkPayload) error {
	return describe(services.ValidatePayload(p))
}

// describe flattens a validation error's issues into the message so they
// show up on the terminal.
func describe(err error) error {
	var verr *services.ValidationError
	if err == nil || !stderrors.As(err, &verr) || len(verr.Issues) == 0 {
		return err
	}
	lines := make([]string, 0, len(verr.Issues))
	for _, is := range verr.Issues {
		lines = append(lines, fmt.Sprintf("  %s: %s", is.Field, is.Message))
	}
	return fmt.Errorf("%s\n%s", verr.Message, strings.Join(lines, "\n"))
}

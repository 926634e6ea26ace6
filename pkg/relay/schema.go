// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// ReportSchema returns an openapi3.SchemaRef of the run report
func ReportSchema() (*openapi3.SchemaRef, error) {
	schema, err := openapi3gen.NewSchemaRefForValue(Summary{}, openapi3.Schemas{})
	if err != nil {
		return nil, fmt.Errorf("unable to generate openapi schema: %w", err)
	}
	schema.Value.Title = "relayprobe run report"
	schema.Value.Description = "Summary of a single relayprobe run. The duration is given in nanoseconds."
	return schema, nil
}

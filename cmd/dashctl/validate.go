package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

type validateCmd struct {
	Path string `arg:"" type:"existingfile" help:"Fixtures YAML file to validate."`
}

func (cmd *validateCmd) Run(out io.Writer) error {
	doc, err := dashboard.ReadFixtures(cmd.Path)
	if err != nil {
		return err
	}
	validator := dashboard.NewJSONSchemaValidator()
	var errs []error
	checked := 0
	for _, def := range dashboard.DefaultPages() {
		for _, binding := range def.Tables {
			rows, ok := doc.Dataset(binding.Dataset)
			if !ok {
				fmt.Fprintf(out, "skip %s/%s: dataset %s missing\n", def.Code, binding.Schema.ID, binding.Dataset)
				continue
			}
			if err := validator.Validate(binding.Schema, rows); err != nil {
				errs = append(errs, fmt.Errorf("%s/%s: %w", def.Code, binding.Schema.ID, err))
				continue
			}
			checked++
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "✓ %s: %d tables valid\n", cmd.Path, checked)
	return err
}

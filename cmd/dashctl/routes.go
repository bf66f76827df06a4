package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

type routesCmd struct {
	Locale string `help:"Locale used for page titles."`
}

func (cmd *routesCmd) Run(out io.Writer) error {
	pages := dashboard.NewPageRegistry()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tPAGE\tTITLE")
	for _, path := range pages.Routes() {
		def, err := pages.Resolve(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", path, def.Code, def.TitleForLocale(cmd.Locale))
	}
	return tw.Flush()
}

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

type tableCmd struct {
	Page     string   `arg:"" help:"Page route, e.g. /product-performance-dashboard."`
	Table    string   `arg:"" help:"Table id on the page, e.g. products."`
	Sort     string   `help:"Column key to sort by."`
	Desc     bool     `help:"Sort descending."`
	Filter   string   `help:"Case-insensitive text filter across searchable columns."`
	PageNum  int      `name:"page-num" default:"1" help:"1-based page to print."`
	PageSize int      `help:"Rows per page (defaults to the table's page size)."`
	Set      []string `help:"Page filter as key=value (repeatable)."`
	CSV      bool     `name:"csv" help:"Write CSV instead of an aligned table."`
	Fixtures string   `type:"existingfile" help:"Fixtures YAML file (defaults to the embedded demo data)."`
}

func (cmd *tableCmd) Run(ctx context.Context, out io.Writer) error {
	opts := dashboard.Options{LoadDelay: time.Millisecond}
	if cmd.Fixtures != "" {
		opts.Fixtures = dashboard.FileFixtureSource{Path: cmd.Fixtures}
		opts.Validator = dashboard.NewJSONSchemaValidator()
	}
	service := dashboard.NewService(opts)
	defer service.Close()

	inst, err := service.Mount(ctx, dashboard.ViewerContext{}, cmd.Page)
	if err != nil {
		return err
	}
	for _, pair := range cmd.Set {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("dashctl: page filter %q must be key=value", pair)
		}
		if err := service.SetPageFilter(ctx, inst.ID, key, value); err != nil {
			return err
		}
	}
	if err := service.WaitLoaded(ctx, inst.ID); err != nil {
		return err
	}

	view, err := service.Table(ctx, inst.ID, cmd.Table)
	if err != nil {
		return err
	}
	for _, action := range cmd.actions() {
		if view, err = service.UpdateTable(ctx, inst.ID, action); err != nil {
			return err
		}
	}

	if cmd.CSV {
		return dashboard.WriteTableCSV(out, view)
	}
	return writeTableView(out, view)
}

func (cmd *tableCmd) actions() []dashboard.TableAction {
	var actions []dashboard.TableAction
	if cmd.Sort != "" {
		direction := dashboard.SortAscending
		if cmd.Desc {
			direction = dashboard.SortDescending
		}
		actions = append(actions, dashboard.TableAction{TableID: cmd.Table, Op: dashboard.TableOpSort, Key: cmd.Sort, Direction: direction})
	}
	if cmd.Filter != "" {
		actions = append(actions, dashboard.TableAction{TableID: cmd.Table, Op: dashboard.TableOpFilter, Text: cmd.Filter})
	}
	if cmd.PageSize > 0 {
		actions = append(actions, dashboard.TableAction{TableID: cmd.Table, Op: dashboard.TableOpPageSize, PageSize: cmd.PageSize})
	}
	if cmd.PageNum > 1 {
		actions = append(actions, dashboard.TableAction{TableID: cmd.Table, Op: dashboard.TableOpPage, Page: cmd.PageNum})
	}
	return actions
}

func writeTableView(out io.Writer, view dashboard.TableView) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	headers := make([]string, 0, len(view.Columns)+1)
	headers = append(headers, "ID")
	for _, col := range view.Columns {
		headers = append(headers, col.Label)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range view.Rows {
		cells := make([]string, 0, len(view.Columns)+1)
		cells = append(cells, row.ID)
		for _, col := range view.Columns {
			cells = append(cells, view.Cell(row, col.Key))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\npage %d of %d, %d matching rows\n", view.Config.Page, view.TotalPages, view.FilteredCount)
	return err
}

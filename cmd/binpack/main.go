// BinPack3D runs online 3D bin packing episodes from the command line.
//
// A settings file (YAML or JSON) describes the container and the box
// sequence generator; a policy places boxes until the container refuses the
// next one. Results can be indexed in SQLite, traced step by step and
// exported as PDF, XLSX, DXF or QR label sheets.
//
// Build:
//
//	go build -o binpack ./cmd/binpack
//
// Examples:
//
//	binpack -config settings.yaml -episodes 20 -policy lowest-fit -pdf report.pdf
//	binpack -compare -episodes 5 -db runs/episodes.db
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/piwi3910/BinPack3D/internal/project"
)

func main() {
	var opts options
	flag.StringVar(&opts.ConfigPath, "config", "", "settings file (.yaml, .yml or .json); defaults apply when empty")
	flag.StringVar(&opts.AppConfigPath, "app_config", project.DefaultConfigPath(), "user preferences file")
	flag.IntVar(&opts.Episodes, "episodes", 1, "episodes to run (per scenario with -compare)")
	flag.IntVar(&opts.MaxSteps, "max_steps", 0, "placement limit per episode, 0 = unlimited")
	flag.StringVar(&opts.Policy, "policy", "", "placement policy: first-fit, lowest-fit or random-fit (default from app config)")
	flag.StringVar(&opts.CatalogPath, "catalog", "", "CSV or XLSX box catalog for the random generator")
	flag.BoolVar(&opts.Compare, "compare", false, "compare generator, rotation and window variants of the settings")
	flag.StringVar(&opts.OutDir, "out", "", "directory for episode files (empty to skip)")
	flag.StringVar(&opts.DBPath, "db", "", "SQLite episode index (default from app config, empty to disable)")
	flag.StringVar(&opts.TrajectoryPath, "trajectory", "", "write every step to this .jsonl.zst file")
	flag.StringVar(&opts.PDFPath, "pdf", "", "PDF report of the best packings")
	flag.StringVar(&opts.XLSXPath, "xlsx", "", "XLSX workbook of the best packing")
	flag.StringVar(&opts.DXFPath, "dxf", "", "DXF top view of the best packing")
	flag.StringVar(&opts.LabelsPath, "labels", "", "QR label sheet for the best packing")
	flag.Int64Var(&opts.Seed, "seed", -1, "override the settings seed (negative keeps it)")
	flag.Parse()

	logger := log.New(os.Stdout, "[binpack] ", log.LstdFlags|log.Lmicroseconds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

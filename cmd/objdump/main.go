// Command objdump prints the records of a Bolt-backed object store index
// in primary key order, with a per-run summary of objects and mapped bytes.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lmittmann/tint"

	"github.com/andreyvit/objstore"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "path to the index database file")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	if *dbPath == "" {
		logger.Error("missing required -db flag")
		os.Exit(2)
	}

	ix, err := objstore.OpenBoltIndex(*dbPath, objstore.BoltOptions{ReadOnly: true})
	if err != nil {
		logger.Error("failed to open index", "path", *dbPath, "err", err)
		os.Exit(1)
	}
	defer ix.Close()

	if err := dump(ix, logger); err != nil {
		logger.Error("dump failed", "err", err)
		os.Exit(1)
	}
}

func dump(ix objstore.Index, logger *slog.Logger) error {
	iter, err := ix.Seek(objstore.ObjectKeyObject(0))
	if err != nil {
		return err
	}
	defer iter.Close()

	var (
		records     int
		objects     int
		extents     int
		mappedBytes uint64
	)
	for iter.Next() {
		item := iter.Item()
		fmt.Println(item.String())
		records++
		switch item.Key.Kind {
		case objstore.KindObject:
			objects++
		case objstore.KindExtent:
			extents++
			mappedBytes += item.Key.Extent.Length()
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}

	logger.Info("index summary",
		"records", records,
		"objects", objects,
		"extents", extents,
		"mapped", humanize.IBytes(mappedBytes))
	return nil
}

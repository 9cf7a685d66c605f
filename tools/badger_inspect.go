package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Standalone read-only dump of the badger store. Handy when debugging
// what the repositories actually persisted.
//
//	go run ./tools -db ./data/badger -prefix msg:

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	// Empty prefix walks every primary record; idx: keys are always skipped.
	prefix := flag.String("prefix", "", "Prefix to scan (msg:, user:, follow:, profile:, notif:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Secondary indexes only repeat primary data.
			if strings.HasPrefix(key, "idx:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				kind, timestamp, detail := describe(key, v)
				table.Append([]string{key, kind, timestamp, detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// describe renders one record. Values are CBOR maps with integer keys;
// the field numbering matches the repositories' disk structs.
func describe(key string, value []byte) (kind, timestamp, detail string) {
	fields := map[int]any{}
	if len(value) > 0 {
		if err := cbor.Unmarshal(value, &fields); err != nil {
			return color.Red.Sprint("RAW"), "", fmt.Sprintf("unmarshal error: %v", err)
		}
	}

	switch {
	case strings.HasPrefix(key, "msg:"):
		return color.Cyan.Sprint("MSG"),
			formatNanos(fields[8]),
			fmt.Sprintf("%v -> %v: %v", short(fields[2]), short(fields[3]), fields[4])
	case strings.HasPrefix(key, "user:"):
		return color.Green.Sprint("USER"),
			formatNanos(fields[7]),
			fmt.Sprintf("%v <%v>", fields[2], fields[3])
	case strings.HasPrefix(key, "follow:"):
		return color.Yellow.Sprint("FOLLOW"), "", "edge"
	case strings.HasPrefix(key, "profile:"):
		return color.Magenta.Sprint("PROFILE"),
			formatNanos(fields[6]),
			fmt.Sprintf("owner=%v location=%v", short(fields[2]), fields[3])
	case strings.HasPrefix(key, "notif:"):
		return color.Blue.Sprint("NOTIF"),
			formatNanos(fields[7]),
			fmt.Sprintf("%v %v (%v %v)", short(fields[3]), fields[4], fields[5], short(fields[6]))
	default:
		return "?", "", fmt.Sprintf("%d bytes", len(value))
	}
}

func formatNanos(v any) string {
	nanos, ok := v.(int64)
	if !ok {
		if u, isUint := v.(uint64); isUint {
			nanos = int64(u)
		} else {
			return ""
		}
	}
	return time.Unix(0, nanos).UTC().Format("2006-01-02 15:04:05")
}

// short truncates ids for readability.
func short(v any) string {
	s := fmt.Sprintf("%v", v)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Log truncate required") {
			// Open in write mode once so badger can truncate, then retry.
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}

			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}

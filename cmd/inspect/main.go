package main

import (
	"flag"
	"fmt"
	"log"
	"market-node/domain"
	"market-node/infrastructure/storage"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"ERROR"`
	// INSPECT_COLOURS disables colored statuses when piping the output
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
}

var statusColours = map[domain.MessageStatus]color.Color{
	domain.StatusNew:              color.FgCyan,
	domain.StatusProcessing:       color.FgBlue,
	domain.StatusProcessed:        color.FgGreen,
	domain.StatusWaiting:          color.FgYellow,
	domain.StatusProcessingFailed: color.FgRed,
	domain.StatusParsingFailed:    color.FgRed,
	domain.StatusUnknownAction:    color.FgMagenta,
}

func main() {
	limit := flag.Int("limit", 200, "Maximum number of records to print")
	status := flag.String("status", "", "Only print records in this status")
	flag.Parse()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// BypassLockGuard allows opening while the node holds the lock
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLogger(nil))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	records, err := storage.NewMessageRepository(db, logs.GetLoggerFromString(config.LogLevel)).List(*limit)
	if err != nil {
		log.Fatalf("Failed to list records: %v", err)
	}
	if *status != "" {
		records = lo.Filter(records, func(r domain.TransportMessage, _ int) bool {
			return string(r.Status) == *status
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Msg ID", "Direction", "Action", "Status", "Attempts", "Received", "Reason"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, record := range records {
		table.Append(toRow(record, config.Colours))
	}
	table.Render()
	fmt.Printf("%d record(s)\n", len(records))
}

func toRow(record domain.TransportMessage, colours bool) []string {
	received := ""
	if !record.Received.IsZero() {
		received = record.Received.Format("2006-01-02 15:04:05")
	}
	statusCell := string(record.Status)
	if c, ok := statusColours[record.Status]; ok && colours {
		statusCell = c.Render(statusCell)
	}
	return []string{
		record.MsgID,
		string(record.Direction),
		string(record.ActionType),
		statusCell,
		strconv.Itoa(record.Attempts),
		received,
		record.Reason,
	}
}

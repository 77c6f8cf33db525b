package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"conftrack/internal/record"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	nameStyle   = lipgloss.NewStyle().Bold(true)
	manualStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// listCmd prints the tracked conferences
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked conferences and their deadlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := newStore().Load()
		if err != nil {
			return err
		}
		if len(db) == 0 {
			fmt.Println("No conferences tracked yet.")
			return nil
		}

		keys := make([]string, 0, len(db))
		for key := range db {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, b := db[keys[i]].PaperDeadline.SortValue(), db[keys[j]].PaperDeadline.SortValue()
			if a != b {
				return a < b
			}
			return keys[i] < keys[j]
		})

		fmt.Println(headerStyle.Render(fmt.Sprintf("%-12s %-28s %-14s %s", "KEY", "PAPER DEADLINE", "SOURCE", "NAME")))
		for _, key := range keys {
			rec := db[key]
			deadline := rec.PaperDeadline.String()
			if deadline == "" {
				deadline = record.TBD
			}
			source := dimStyle.Render(rec.AIModel)
			if rec.IsManual() {
				source = manualStyle.Render("manual")
			}
			fmt.Printf("%-12s %-28s %-14s %s\n", key, deadline, source, nameStyle.Render(rec.Name))
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d conference(s)", len(db))))
		return nil
	},
}

// deleteCmd removes one conference
var deleteCmd = &cobra.Command{
	Use:   "delete KEY",
	Short: "Remove a conference from the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		existed, err := newStore().Delete(args[0])
		if err != nil {
			return err
		}
		if !existed {
			return fmt.Errorf("no conference stored under %s", args[0])
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

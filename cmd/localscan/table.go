package main

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/localscan/intel-gateway/app/domain/intel"
)

const maxShipsShown = 3

func renderTable(w io.Writer, rows []intel.PlayerData) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Character", "Corporation", "Alliance", "Ships", "Danger", "Gang", "Destroyed", "Lost", "K/D"})
	for _, row := range rows {
		t.AppendRow(tableRow(row))
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
	})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}

// tableRow leaves cells blank for anything not resolved yet.
func tableRow(row intel.PlayerData) table.Row {
	out := table.Row{row.Name, row.CorpName, row.AllyName, "", "", "", "", "", ""}
	if row.Stats == nil {
		return out
	}
	ships := make([]string, 0, maxShipsShown)
	for i, ship := range row.Ships {
		if i == maxShipsShown {
			break
		}
		ships = append(ships, ship.Name)
	}
	out[3] = strings.Join(ships, ", ")
	out[4] = row.DangerRatio
	out[5] = row.GangRatio
	out[6] = row.ShipsDestroyed
	out[7] = row.ShipsLost
	out[8] = row.KillDeathRatio().String()
	return out
}

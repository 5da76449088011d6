// Package reporting serializes the scored per-customer feature table.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"fraud-velocity-lab/internal/domain"
)

// Header is the fixed output column order. Downstream consumers diff
// runs against each other, so this order never changes.
const Header = "customer_id,orders_1d,orders_7d,orders_30d," +
	"value_1d,value_7d,value_30d,avg_ticket_7d,avg_ticket_30d," +
	"interpurchase_hours,flag_high_value_7d,flag_high_velocity_24h,velocity_score"

// SortByScore orders records by velocity score DESC, customer ID ASC.
// The customer ID tie-break keeps repeated runs byte-identical.
func SortByScore(records []domain.CustomerFeatureRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].VelocityScore != records[j].VelocityScore {
			return records[i].VelocityScore > records[j].VelocityScore
		}
		return records[i].CustomerID < records[j].CustomerID
	})
}

// RenderCSV renders scored feature records as a CSV string. Money
// columns use two decimal places, interpurchase hours four; the nil
// interpurchase sentinel renders as an empty field.
func RenderCSV(records []domain.CustomerFeatureRecord) string {
	var sb strings.Builder

	sb.WriteString(Header)
	sb.WriteByte('\n')

	for _, r := range records {
		interpurchase := ""
		if r.InterpurchaseHours != nil {
			interpurchase = strconv.FormatFloat(*r.InterpurchaseHours, 'f', 4, 64)
		}

		sb.WriteString(fmt.Sprintf("%s,%d,%d,%d,%s,%s,%s,%s,%s,%s,%t,%t,%d\n",
			r.CustomerID,
			r.Orders1d,
			r.Orders7d,
			r.Orders30d,
			r.Value1d.StringFixed(2),
			r.Value7d.StringFixed(2),
			r.Value30d.StringFixed(2),
			r.AvgTicket7d.StringFixed(2),
			r.AvgTicket30d.StringFixed(2),
			interpurchase,
			r.FlagHighValue7d,
			r.FlagHighVelocity24h,
			r.VelocityScore,
		))
	}

	return sb.String()
}

// WriteFile renders records and writes them to path, creating parent
// directories as needed.
func WriteFile(path string, records []domain.CustomerFeatureRecord) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(RenderCSV(records)), 0o644); err != nil {
		return fmt.Errorf("write feature csv: %w", err)
	}
	return nil
}

package domain

type summaryKey struct {
	SupplierID int64
	ProductID  int64
	BrandID    int64
}

// Summarize groups classified rows by (supplier, product, brand) and counts
// the occurrences of each 4-way status label, zero-filled. Display names are
// taken from the first row of each group; all rows in a group share them by
// construction. Groups appear in first-seen order.
func Summarize(rows []ClassifiedRow) []SummaryRow {
	index := make(map[summaryKey]int)
	summary := make([]SummaryRow, 0)

	for _, row := range rows {
		key := summaryKey{
			SupplierID: row.SupplierID,
			ProductID:  row.ProductID,
			BrandID:    row.BrandID,
		}

		i, ok := index[key]
		if !ok {
			i = len(summary)
			index[key] = i
			summary = append(summary, SummaryRow{
				SupplierID:   row.SupplierID,
				SupplierName: row.SupplierName,
				ProductID:    row.ProductID,
				ProductName:  row.ProductName,
				BrandID:      row.BrandID,
				BrandName:    row.BrandName,
			})
		}

		switch row.Status {
		case StatusReorder:
			summary[i].Reorder++
		case StatusTransferStock:
			summary[i].TransferStock++
		case StatusOverStock:
			summary[i].OverStock++
		case StatusSufficient:
			summary[i].Sufficient++
		}
	}

	return summary
}

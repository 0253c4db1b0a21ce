package wifi

import "sort"

// SortScanRecords sorts scan records in place for display.
// The sorting order is:
// 1. Stronger signal level first.
// 2. Records without an SSID (hidden networks) last.
// 3. Fallback to SSID alphabetically, then BSSID.
func SortScanRecords(records []ScanRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a := records[i]
		b := records[j]

		if a.Level != b.Level {
			return a.Level > b.Level
		}

		// Hidden networks after named ones at equal strength.
		if (a.SSID == "") != (b.SSID == "") {
			return a.SSID != ""
		}

		if a.SSID != b.SSID {
			return a.SSID < b.SSID
		}
		return a.BSSID < b.BSSID
	})
}

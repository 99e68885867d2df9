package overtime

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

type snapshot struct {
	StartDate           Date               `json:"s"`
	EndDate             Date               `json:"e"`
	WorkingHours        WeeklySchedule     `json:"w"`
	OvertimePercentages PercentageSchedule `json:"p"`
	DayEntries          []DayEntry         `json:"d"`
}

// SnapshotKey hashes every input Summarize reads, so equal keys mean equal summaries.
func SnapshotKey(calc Calculation) (string, error) {
	payload, err := json.Marshal(snapshot{
		StartDate:           calc.StartDate,
		EndDate:             calc.EndDate,
		WorkingHours:        calc.WorkingHours,
		OvertimePercentages: calc.OvertimePercentages,
		DayEntries:          calc.DayEntries,
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return "summary:v1:" + hex.EncodeToString(sum[:]), nil
}

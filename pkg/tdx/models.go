package tdx

import "encoding/json"

// TimetableResponse is the v3 DailyTrainTimetable/OD payload. Trains stay raw so a
// malformed one can be dropped without losing the rest.
type TimetableResponse struct {
	UpdateTime      string            `json:"UpdateTime"`
	TrainDate       string            `json:"TrainDate"`
	TrainTimetables []json.RawMessage `json:"TrainTimetables"`
}

// TrainTimetable is one train with its full stop sequence.
type TrainTimetable struct {
	TrainInfo TrainInfo  `json:"TrainInfo"`
	StopTimes []StopTime `json:"StopTimes"`
}

// TrainInfo describes the train itself
type TrainInfo struct {
	TrainNo           string   `json:"TrainNo"`
	TrainTypeID       string   `json:"TrainTypeID"`
	TrainTypeName     NameType `json:"TrainTypeName"`
	StartingStationID string   `json:"StartingStationID"`
	EndingStationID   string   `json:"EndingStationID"`
}

// NameType is the bilingual name object used throughout the TDX API.
type NameType struct {
	ZhTw string `json:"Zh_tw"`
	En   string `json:"En"`
}

// StopTime is one scheduled stop, times are "HH:MM".
type StopTime struct {
	StopSequence  int      `json:"StopSequence"`
	StationID     string   `json:"StationID"`
	StationName   NameType `json:"StationName"`
	ArrivalTime   string   `json:"ArrivalTime"`
	DepartureTime string   `json:"DepartureTime"`
}

// DelayEntry is a single train in the live delay feed. Entries are decoded one at a
// time, so a non-integer DelayTime fails and drops only its own entry.
type DelayEntry struct {
	TrainNo       string `json:"TrainNo"`
	StationID     string `json:"StationID"`
	DelayTime     *int   `json:"DelayTime"`
	SrcUpdateTime string `json:"SrcUpdateTime"`
}

package wire

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/dayslice/internal/report"
	"github.com/sadopc/dayslice/internal/store"
)

const sampleDoc = `{
  "categories": [
    {"id": "c1", "value": "sleep", "label": "Sleep", "icon": "😴", "color": "#3b82f6", "order": 1001},
    {"value": "work", "label": "Work", "icon": "💼"}
  ],
  "records": [
    {
      "id": "r1",
      "categoryId": "c1",
      "task": "",
      "startTime": {"seconds": 1710196800, "nanoseconds": 0, "type": "firestore/timestamp/1.0"},
      "endTime": {"seconds": 1710225600, "nanoseconds": 500000000},
      "duration": 28800
    },
    {
      "id": "r2",
      "categoryId": "work",
      "task": "draft",
      "startTime": {"seconds": 1710234000, "nanoseconds": 0},
      "duration": 0
    }
  ]
}`

// ============================================================
// Timestamps
// ============================================================

func TestTimestampRoundTrip(t *testing.T) {
	in := time.Date(2024, 3, 12, 8, 30, 15, 250, time.UTC)
	out, err := FromTime(in).Time()
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
	assert.Equal(t, time.UTC, out.Location())
}

func TestTimestampRejectsBadNanos(t *testing.T) {
	_, err := Timestamp{Seconds: 1, Nanoseconds: int64(time.Second)}.Time()
	assert.ErrorIs(t, err, ErrMalformedTimestamp)

	_, err = Timestamp{Seconds: 1, Nanoseconds: -1}.Time()
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
}

// ============================================================
// Decode / Encode
// ============================================================

func TestDecodeDocument(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	require.Len(t, doc.Categories, 2)
	require.Len(t, doc.Records, 2)

	r := doc.Records[0]
	assert.Equal(t, "c1", r.CategoryID)
	assert.Equal(t, int64(1710196800), r.StartTime.Seconds)
	require.NotNil(t, r.EndTime)
	assert.Equal(t, int64(500000000), r.EndTime.Nanoseconds)
	assert.Nil(t, doc.Records[1].EndTime)
}

func TestDecodeBareArray(t *testing.T) {
	in := `  [{"id": "a", "categoryId": "x", "startTime": {"seconds": 0, "nanoseconds": 0}}]`
	doc, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	assert.Empty(t, doc.Categories)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "a", doc.Records[0].ID)
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"empty":    "   ",
		"not json": "nope",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestDecodeKeepsRecordsWithoutID(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"records": [{"categoryId": "x"}, {"id": "b", "categoryId": "y"}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Records, 2)
	assert.Empty(t, doc.Records[0].ID)
}

func TestEncodeEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Document{}))
	assert.Contains(t, buf.String(), `"categories": []`)
	assert.Contains(t, buf.String(), `"records": []`)
}

func TestEncodeDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))
	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

// ============================================================
// Conversions
// ============================================================

func TestStoreRecord(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	r, err := doc.Records[0].StoreRecord()
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ExternalID)
	assert.Equal(t, time.Date(2024, 3, 11, 22, 40, 0, 0, time.UTC), r.StartTime)
	require.NotNil(t, r.EndTime)
	assert.Equal(t, 500*time.Millisecond, r.EndTime.Sub(time.Unix(1710225600, 0)))

	running, err := doc.Records[1].StoreRecord()
	require.NoError(t, err)
	assert.True(t, running.Running())
}

func TestStoreRecordRejectsBadInput(t *testing.T) {
	_, err := Record{CategoryID: "work"}.StoreRecord()
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = Record{ID: "x", StartTime: Timestamp{Nanoseconds: -1}}.StoreRecord()
	assert.ErrorIs(t, err, ErrMalformedTimestamp)

	_, err = Record{ID: "x", EndTime: &Timestamp{Nanoseconds: int64(time.Second)}}.StoreRecord()
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
}

func TestStoreCategoryDefaultsID(t *testing.T) {
	c := Category{Value: "work", Label: "Work"}.StoreCategory()
	assert.Equal(t, "work", c.ID)
}

func TestFromStoreRecord(t *testing.T) {
	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	local := FromStoreRecord(store.TimeRecord{ID: 7, CategoryID: "work", StartTime: start, EndTime: &end, Duration: 3600})
	assert.Equal(t, "local-7", local.ID)
	require.NotNil(t, local.EndTime)
	assert.Equal(t, end.Unix(), local.EndTime.Seconds)
	assert.Nil(t, local.CreatedAt)

	imported := FromStoreRecord(store.TimeRecord{ID: 8, ExternalID: "abc", StartTime: start})
	assert.Equal(t, "abc", imported.ID)
	assert.Nil(t, imported.EndTime)
}

func TestReportInput(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	records, cats, skipped := doc.ReportInput()
	assert.Zero(t, skipped)
	require.Len(t, records, 1, "running record skipped")
	assert.Contains(t, cats, "c1")
	assert.Contains(t, cats, "work")

	w := report.DayWindow(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))
	summary := report.Build(records, cats, w, report.DefaultUnrecordedLabel)
	require.Len(t, summary.Slots, 1)
	assert.Equal(t, "Sleep", summary.Slots[0].Category.Label)
	assert.Equal(t, 24*time.Hour, summary.Recorded+summary.Unrecorded)
}

func TestReportInputSkipsBadRecords(t *testing.T) {
	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	ts := func(h int) *Timestamp {
		v := FromTime(start.Add(time.Duration(h) * time.Hour))
		return &v
	}
	doc := &Document{
		Categories: []Category{{ID: "work", Value: "work", Label: "Work"}},
		Records: []Record{
			{ID: "good", CategoryID: "work", StartTime: *ts(0), EndTime: ts(2)},
			{ID: "bad-start", CategoryID: "work", StartTime: Timestamp{Seconds: start.Unix(), Nanoseconds: 2000000000}, EndTime: ts(3)},
			{ID: "bad-end", CategoryID: "work", StartTime: *ts(4), EndTime: &Timestamp{Nanoseconds: -1}},
			{CategoryID: "work", StartTime: *ts(5), EndTime: ts(6)},
			{ID: "running", CategoryID: "work", StartTime: *ts(7)},
		},
	}

	records, cats, skipped := doc.ReportInput()
	assert.Equal(t, 3, skipped, "running records are not counted")
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].ID)

	summary := report.Build(records, cats, report.DayWindow(start), report.DefaultUnrecordedLabel)
	require.Len(t, summary.Slots, 1)
	assert.Equal(t, 2*time.Hour, summary.Recorded)
	assert.Equal(t, "Work", summary.Slots[0].Category.Label)
}

func TestNewDocument(t *testing.T) {
	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	doc := NewDocument(
		[]store.Category{{ID: "work", Value: "work", Label: "Work"}},
		[]store.TimeRecord{{ID: 1, CategoryID: "work", StartTime: start, EndTime: &end}},
		start,
	)
	require.NotNil(t, doc.ExportedAt)
	assert.Len(t, doc.Categories, 1)
	assert.Len(t, doc.Records, 1)
}

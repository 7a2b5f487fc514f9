package atproto

import (
	"fmt"
	"math"
	"time"

	"brewlog/internal/models"

	"github.com/bluesky-social/indigo/atproto/syntax"
)

// Lexicons have no float type, so fractional values are stored in tenths
// (93.5 -> 935).
func toTenths(v float64) int {
	return int(math.Round(v * 10))
}

func fromTenths(v float64) float64 {
	return v / 10.0
}

// RecordKeyFor derives a TID record key from an entry's millisecond id so the
// same entry always exports to the same AT-URI. A TID holds 53 bits of
// microseconds, so ids above models.MaxEntryID would wrap and collide.
func RecordKeyFor(entry *models.BrewLogEntry) (string, error) {
	if entry.ID <= 0 || entry.ID > models.MaxEntryID {
		return "", fmt.Errorf("entry id %d cannot be a record key", entry.ID)
	}
	return syntax.NewTID(entry.ID*1000, 0).String(), nil
}

// EntryToRecord converts a brew log entry to an atproto record map.
// Local image paths are not exported; only remote URLs are meaningful to
// other clients.
func EntryToRecord(entry *models.BrewLogEntry) (map[string]interface{}, error) {
	if entry.Date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}

	record := map[string]interface{}{
		"$type":     NSIDBrewLog,
		"createdAt": entry.Date.Format(time.RFC3339),
		"method":    string(entry.BrewMethod),
	}

	if entry.Name != "" {
		record["name"] = entry.Name
	}
	if models.IsRemoteImage(entry.Image) {
		record["imageUrl"] = entry.Image
	}
	if entry.Rating > 0 {
		record["rating"] = toTenths(entry.Rating)
	}

	bean := map[string]interface{}{}
	cb := entry.CoffeeBeanDetail
	if cb.CoffeeName != "" {
		bean["coffeeName"] = cb.CoffeeName
	}
	if cb.Origin != "" {
		bean["origin"] = cb.Origin
	}
	if !cb.RoastDate.IsZero() {
		bean["roastDate"] = cb.RoastDate.Format(time.RFC3339)
	}
	if cb.RoastLevel != "" {
		bean["roastLevel"] = cb.RoastLevel
	}
	if cb.BagWeight > 0 {
		bean["bagWeight"] = toTenths(cb.BagWeight)
	}
	if len(bean) > 0 {
		record["bean"] = bean
	}

	bd := entry.BrewDetail
	if bd.GrindSize != "" {
		record["grindSize"] = bd.GrindSize
	}
	if bd.BeanWeight > 0 {
		record["coffeeAmount"] = toTenths(bd.BeanWeight)
	}
	if bd.WaterAmount > 0 {
		record["waterAmount"] = toTenths(bd.WaterAmount)
	}
	if bd.Ratio > 0 {
		record["ratio"] = toTenths(bd.Ratio)
	}
	if bd.BrewTime > 0 {
		record["timeSeconds"] = bd.BrewTime
	}
	if bd.Temperature > 0 {
		record["temperature"] = toTenths(bd.Temperature)
	}

	taste := make(map[string]interface{}, models.NumTasteCategories)
	for _, c := range models.TasteCategories() {
		taste[c.String()] = entry.TasteRating.Get(c)
	}
	record["tasteRating"] = taste

	return record, nil
}

// number reads a numeric field that may have come from JSON (float64) or
// from EntryToRecord directly (int).
func number(m map[string]interface{}, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func dateField(m map[string]interface{}, key string) (models.Date, error) {
	s, ok := m[key].(string)
	if !ok {
		return models.Date{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid %s format: %w", key, err)
	}
	return models.Date{Time: t}, nil
}

// RecordToEntry converts an atproto record map to a brew log entry.
// The atURI parameter should be the full AT-URI of the record; when its rkey
// is a TID the entry id is recovered from it.
func RecordToEntry(record map[string]interface{}, atURI string) (*models.BrewLogEntry, error) {
	entry := &models.BrewLogEntry{}

	if atURI != "" {
		parsedURI, err := syntax.ParseATURI(atURI)
		if err != nil {
			return nil, fmt.Errorf("invalid AT-URI: %w", err)
		}
		if tid, err := syntax.ParseTID(parsedURI.RecordKey().String()); err == nil {
			entry.ID = tid.Time().UnixMilli()
		}
	}

	if _, ok := record["createdAt"].(string); !ok {
		return nil, fmt.Errorf("createdAt is required")
	}
	date, err := dateField(record, "createdAt")
	if err != nil {
		return nil, err
	}
	entry.Date = date

	method, _ := record["method"].(string)
	parsedMethod, err := models.ParseBrewMethod(method)
	if err != nil {
		return nil, err
	}
	entry.BrewMethod = parsedMethod

	if name, ok := record["name"].(string); ok {
		entry.Name = name
	}
	if image, ok := record["imageUrl"].(string); ok {
		entry.Image = image
	}
	if rating, ok := number(record, "rating"); ok {
		entry.Rating = fromTenths(rating)
	}

	if bean, ok := record["bean"].(map[string]interface{}); ok {
		cb := &entry.CoffeeBeanDetail
		cb.CoffeeName, _ = bean["coffeeName"].(string)
		cb.Origin, _ = bean["origin"].(string)
		cb.RoastLevel, _ = bean["roastLevel"].(string)
		if cb.RoastDate, err = dateField(bean, "roastDate"); err != nil {
			return nil, err
		}
		if w, ok := number(bean, "bagWeight"); ok {
			cb.BagWeight = fromTenths(w)
		}
	}

	bd := &entry.BrewDetail
	bd.GrindSize, _ = record["grindSize"].(string)
	if v, ok := number(record, "coffeeAmount"); ok {
		bd.BeanWeight = fromTenths(v)
	}
	if v, ok := number(record, "waterAmount"); ok {
		bd.WaterAmount = fromTenths(v)
	}
	if v, ok := number(record, "ratio"); ok {
		bd.Ratio = fromTenths(v)
	}
	if v, ok := number(record, "timeSeconds"); ok {
		bd.BrewTime = int(v)
	}
	if v, ok := number(record, "temperature"); ok {
		bd.Temperature = fromTenths(v)
	}

	if taste, ok := record["tasteRating"].(map[string]interface{}); ok {
		for name := range taste {
			c, err := models.ParseTasteCategory(name)
			if err != nil {
				return nil, err
			}
			v, _ := number(taste, name)
			if err := entry.TasteRating.Set(c, int(v)); err != nil {
				return nil, err
			}
		}
	}

	return entry, nil
}

// ExportedRecord is one entry ready to be written to a repository.
type ExportedRecord struct {
	URI   string                 `json:"uri"`
	RKey  string                 `json:"rkey"`
	Value map[string]interface{} `json:"value"`
}

// SkippedEntry is an entry ExportEntries could not convert.
type SkippedEntry struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// ExportEntries converts entries to records in did's brew log collection.
// Entries that cannot become records are reported in skipped and do not stop
// the rest of the export.
func ExportEntries(did syntax.DID, entries []models.BrewLogEntry) (records []ExportedRecord, skipped []SkippedEntry) {
	records = make([]ExportedRecord, 0, len(entries))
	for i := range entries {
		rkey, err := RecordKeyFor(&entries[i])
		if err != nil {
			skipped = append(skipped, SkippedEntry{ID: entries[i].ID, Reason: err.Error()})
			continue
		}
		value, err := EntryToRecord(&entries[i])
		if err != nil {
			skipped = append(skipped, SkippedEntry{ID: entries[i].ID, Reason: err.Error()})
			continue
		}
		records = append(records, ExportedRecord{
			URI:   BuildATURI(did.String(), NSIDBrewLog, rkey),
			RKey:  rkey,
			Value: value,
		})
	}
	return records, skipped
}

package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/JakeFAU/lead-harvester/internal/lead"
)

// LoadRecords decodes raw company records from either a JSON array or
// newline-delimited JSON objects.
func LoadRecords(r io.Reader) ([]lead.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var records []lead.RawRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return records, nil
	}
	var records []lead.RawRecord
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		var rec lead.RawRecord
		err := dec.Decode(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

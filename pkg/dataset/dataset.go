// Package dataset holds the session's resident dataset and the merge
// operations that are the only way to mutate it.
package dataset

import (
	"fmt"

	"github.com/epe-tools/desvinculados-engine/pkg/models"
)

// Dataset is the resident collection of disconnection records: ordered,
// session-scoped, and never holding two records with the same client id.
// Mutating operations are all-or-nothing; on error the prior contents are
// left untouched.
type Dataset struct {
	records []models.Record
	index   map[int64]int // client id -> position in records
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{index: make(map[int64]int)}
}

// Len returns the number of resident records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a copy of the resident records in insertion order.
func (d *Dataset) Records() []models.Record {
	out := make([]models.Record, len(d.records))
	copy(out, d.records)
	return out
}

// Get returns the record with the given client id, if resident.
func (d *Dataset) Get(clientID int64) (models.Record, bool) {
	if i, ok := d.index[clientID]; ok {
		return d.records[i], true
	}
	return models.Record{}, false
}

// Keys returns the resident client ids in insertion order.
func (d *Dataset) Keys() []int64 {
	keys := make([]int64, len(d.records))
	for i, r := range d.records {
		keys[i] = r.ClientID
	}
	return keys
}

// FilterStatus returns the resident records with the given status, in
// insertion order. An invalid status yields an empty slice.
func (d *Dataset) FilterStatus(status models.Status) []models.Record {
	var out []models.Record
	for _, r := range d.records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// Upsert merges a normalized batch into the dataset by client id. Batch
// records replace resident records with the same key and append otherwise;
// resident records whose key is absent from the batch are preserved
// unchanged. Within the batch the last occurrence of a repeated key wins.
// An invalid record fails the whole operation and leaves the dataset as it
// was.
func (d *Dataset) Upsert(batch []models.Record) error {
	deduped := dedupeLastWins(batch)
	for i := range deduped {
		if err := deduped[i].Validate(); err != nil {
			return fmt.Errorf("batch record %d: %w", i, err)
		}
	}

	records, index := d.snapshotState()
	for _, rec := range deduped {
		if pos, ok := index[rec.ClientID]; ok {
			records[pos] = rec
		} else {
			index[rec.ClientID] = len(records)
			records = append(records, rec)
		}
	}

	d.records, d.index = records, index
	return nil
}

// Reconcile merges an edited partial view back into the full dataset. The
// caller names the keys that were visible in the pre-edit view; every
// resident record with a visible key is removed, then the edited rows are
// merged in. A visible key absent from the edited rows is therefore a real
// deletion, which a plain upsert could not express. Edited rows without a
// positive client id are abandoned additions and are silently discarded;
// any other invalid row fails the whole operation.
func (d *Dataset) Reconcile(visibleKeys []int64, edited []models.Record) error {
	visible := make(map[int64]bool, len(visibleKeys))
	for _, k := range visibleKeys {
		visible[k] = true
	}

	var kept []models.Record
	for _, rec := range edited {
		if rec.ClientID <= 0 {
			continue
		}
		kept = append(kept, rec)
	}
	kept = dedupeLastWins(kept)
	for i := range kept {
		if err := kept[i].Validate(); err != nil {
			return fmt.Errorf("edited record %d: %w", i, err)
		}
	}

	records := make([]models.Record, 0, len(d.records))
	index := make(map[int64]int, len(d.records))
	for _, rec := range d.records {
		if visible[rec.ClientID] {
			continue
		}
		index[rec.ClientID] = len(records)
		records = append(records, rec)
	}

	// Edited rows whose key survived outside the visible set (an addition
	// colliding with an untouched record) replace rather than duplicate.
	for _, rec := range kept {
		if pos, ok := index[rec.ClientID]; ok {
			records[pos] = rec
		} else {
			index[rec.ClientID] = len(records)
			records = append(records, rec)
		}
	}

	d.records, d.index = records, index
	return nil
}

// Replace swaps the dataset contents for the given records, deduplicated
// last-wins. Used when a snapshot load re-seeds the session.
func (d *Dataset) Replace(records []models.Record) error {
	fresh := New()
	if err := fresh.Upsert(records); err != nil {
		return err
	}
	d.records, d.index = fresh.records, fresh.index
	return nil
}

func (d *Dataset) snapshotState() ([]models.Record, map[int64]int) {
	records := make([]models.Record, len(d.records))
	copy(records, d.records)
	index := make(map[int64]int, len(d.index))
	for k, v := range d.index {
		index[k] = v
	}
	return records, index
}

// dedupeLastWins collapses repeated client ids to the last occurrence while
// keeping the order of first appearance.
func dedupeLastWins(records []models.Record) []models.Record {
	pos := make(map[int64]int, len(records))
	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if i, ok := pos[rec.ClientID]; ok {
			out[i] = rec
			continue
		}
		pos[rec.ClientID] = len(out)
		out = append(out, rec)
	}
	return out
}

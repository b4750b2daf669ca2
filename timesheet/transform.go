/*
transform.go - Bidirectional task-grouped <-> date-indexed conversion

PURPOSE:
  The backend speaks in task groups (one group per task identity, holding
  dated sub-items); the engine edits a date-indexed item map. This file
  converts between the two shapes.

INBOUND (ToItemMap):
  For each sub-item: truncate the date to a day key, construct a WorkItem
  copying identity and time fields, default absent optional fields to zero
  values, append to the bucket for that day. Sub-items with no usable date
  or whose date falls outside the period are skipped with a logged warning.

OUTBOUND (ToTaskGroups):
  Walk the period's days in order; find-or-create the TaskGroup for each
  item's group key (insertion order = first encounter); rebuild sub-item
  timestamps as period-local midnight when the item has no explicit times.

DETERMINISM:
  Day buckets are kept sorted by group key, so ToItemMap(ToTaskGroups(x))
  reproduces ToItemMap(x) exactly (idempotent after first normalization).
*/
package timesheet

import (
	"sort"

	"github.com/google/uuid"

	"github.com/warp/timesheet-engine/logging"
)

// Transformer converts between backend task groups and the engine item map.
type Transformer struct {
	log *logging.Logger
}

func NewTransformer(log *logging.Logger) *Transformer {
	if log == nil {
		log = logging.Discard()
	}
	return &Transformer{log: log.WithComponent(logging.ComponentTransform)}
}

// =============================================================================
// INBOUND - task groups -> item map
// =============================================================================

// ToItemMap flattens task groups into the date-indexed working set for the
// given period. Fail-soft: malformed sub-items are skipped, never fatal.
func (t *Transformer) ToItemMap(period Period, groups []TaskGroup) ItemMap {
	m := make(ItemMap)
	kept, skipped := 0, 0

	for _, group := range groups {
		for _, sub := range group.Items {
			if sub.Date.IsZero() {
				t.log.Warn("sub-item without date skipped",
					logging.FieldGroupKey, string(group.Key()),
					logging.FieldItemID, sub.ID)
				skipped++
				continue
			}
			date := TruncateToDay(sub.Date.Time)
			if !period.Contains(date) {
				t.log.Warn("sub-item outside period skipped",
					logging.FieldGroupKey, string(group.Key()),
					logging.FieldDate, date.String())
				skipped++
				continue
			}
			item := buildWorkItem(group, sub, date)
			if !insertSorted(m, item) {
				t.log.Warn("duplicate sub-item for date and group skipped",
					logging.FieldGroupKey, string(group.Key()),
					logging.FieldDate, date.String())
				skipped++
				continue
			}
			kept++
		}
	}

	t.log.Debug("inbound transform complete",
		logging.FieldPeriod, period.String(),
		logging.FieldCount, kept,
		"skipped", skipped)
	return m
}

func buildWorkItem(group TaskGroup, sub SubItem, date TimePoint) WorkItem {
	id := sub.ID
	if id == "" {
		id = uuid.NewString()
	}
	return WorkItem{
		ID:             id,
		Date:           date,
		Identity:       group.Identity,
		CustomerName:   group.CustomerName,
		ProjectName:    group.ProjectName,
		TaskName:       group.TaskName,
		DepartmentName: group.DepartmentName,
		TimeTypeName:   group.TimeTypeName,
		Billable:       group.Billable,
		Productive:     group.Productive,
		ActualTime:     defaultHours(sub.Actual),
		BillableTime:   defaultHours(sub.Billable),
		ActualQuantity: sub.Quantity,
		Remark:         sub.Remark,
		Status:         sub.Status,
	}
}

func defaultHours(a Amount) Amount {
	if a.Unit == "" {
		return ZeroHours()
	}
	return a
}

// insertSorted places the item into its day bucket keeping the bucket sorted
// by group key. Returns false if the key is already taken.
func insertSorted(m ItemMap, item WorkItem) bool {
	key := item.Date.Key()
	bucket := m[key]
	gk := item.GroupKey()

	i := sort.Search(len(bucket), func(i int) bool {
		return bucket[i].GroupKey() >= gk
	})
	if i < len(bucket) && bucket[i].GroupKey() == gk {
		return false
	}
	bucket = append(bucket, WorkItem{})
	copy(bucket[i+1:], bucket[i:])
	bucket[i] = item
	m[key] = bucket
	return true
}

// =============================================================================
// OUTBOUND - item map -> task groups
// =============================================================================

// ToTaskGroups rebuilds the backend shape from the item map. Groups appear
// in insertion order of first encounter walking the period's days.
func (t *Transformer) ToTaskGroups(period Period, m ItemMap) []TaskGroup {
	var groups []TaskGroup
	index := make(map[GroupKey]int)

	for _, key := range period.DayKeys() {
		for _, item := range m[key] {
			gk := item.GroupKey()
			gi, ok := index[gk]
			if !ok {
				gi = len(groups)
				index[gk] = gi
				groups = append(groups, TaskGroup{
					Identity:       item.Identity,
					CustomerName:   item.CustomerName,
					ProjectName:    item.ProjectName,
					TaskName:       item.TaskName,
					DepartmentName: item.DepartmentName,
					TimeTypeName:   item.TimeTypeName,
					Billable:       item.Billable,
					Productive:     item.Productive,
				})
			}
			groups[gi].Items = append(groups[gi].Items, SubItem{
				ID: item.ID,
				// No explicit start/end on edited items: both collapse to
				// the period-local midnight-normalized date.
				Start:    item.Date,
				End:      item.Date,
				Date:     item.Date,
				Actual:   item.ActualTime,
				Billable: item.BillableTime,
				Quantity: item.ActualQuantity,
				Remark:   item.Remark,
				Status:   item.Status,
			})
		}
	}

	t.log.Debug("outbound transform complete",
		logging.FieldPeriod, period.String(),
		logging.FieldCount, len(groups))
	return groups
}

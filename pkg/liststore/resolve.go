/*
 Copyright 2024 OpsDeck Authors.

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package liststore

import (
	"time"

	"github.com/opsdeck/console/pkg/types"
)

// ResolveRelativeRange turns a relative date token into the concrete
// [start, end) instant range it covers at the given moment. Tokens are
// resolved here, on the server, never by clients, so "today" is always
// the server's today.
func ResolveRelativeRange(token types.RelativeDateToken, now time.Time) (time.Time, time.Time) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch token {
	case types.RelNow:
		return now, now
	case types.RelToday:
		return dayStart, dayStart.AddDate(0, 0, 1)
	case types.RelYesterday:
		return dayStart.AddDate(0, 0, -1), dayStart
	case types.RelTomorrow:
		return dayStart.AddDate(0, 0, 1), dayStart.AddDate(0, 0, 2)
	case types.RelThisWeek:
		start := startOfWeek(dayStart)
		return start, start.AddDate(0, 0, 7)
	case types.RelLastWeek:
		start := startOfWeek(dayStart).AddDate(0, 0, -7)
		return start, start.AddDate(0, 0, 7)
	case types.RelThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0)
	case types.RelLastMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		return start, start.AddDate(0, 1, 0)
	case types.RelThisYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(1, 0, 0)
	case types.RelLastYear:
		start := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(1, 0, 0)
	}
	return now, now
}

// Monday-based weeks.
func startOfWeek(dayStart time.Time) time.Time {
	weekday := int(dayStart.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return dayStart.AddDate(0, 0, -(weekday - 1))
}

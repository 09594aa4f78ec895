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
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/opsdeck/console/pkg/types"
)

var (
	seedStatuses     = []string{"active", "degraded", "retired", "pending"}
	seedEnvironments = []string{"production", "staging", "development"}
	seedOwners       = []string{"platform", "network", "delivery", "secops"}
)

// Seed fills every resource kind with n development records. Seeding
// writes rows directly, it does not announce change events.
func (s *Store) Seed(ctx context.Context, n int) error {
	now := time.Now()
	rows := make([]ResourceRow, 0, n*len(types.AllKinds()))
	for _, kind := range types.AllKinds() {
		for i := 0; i < n; i++ {
			due := now.AddDate(0, 0, i%30-10)
			rows = append(rows, ResourceRow{
				ID:          uuid.New().String(),
				Kind:        string(kind),
				Name:        fmt.Sprintf("%s-%03d", kind, i+1),
				Status:      seedStatuses[i%len(seedStatuses)],
				Environment: seedEnvironments[i%len(seedEnvironments)],
				Owner:       seedOwners[i%len(seedOwners)],
				Priority:    int64(i%5 + 1),
				URL:         fmt.Sprintf("https://%s-%03d.internal.opsdeck.io", kind, i+1),
				Username:    fmt.Sprintf("svc-%s-%03d", kind, i+1),
				Note:        fmt.Sprintf("seeded %s record %d", kind, i+1),
				Archived:    i%7 == 0,
				DueAt:       &due,
				CreatedAt:   now.Add(-time.Duration(i) * time.Hour),
				UpdatedAt:   now,
			})
		}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, 200).Error; err != nil {
		return errors.Wrap(err, "seed records")
	}
	s.logger.Infow("seeded development data", "records", len(rows))
	return nil
}

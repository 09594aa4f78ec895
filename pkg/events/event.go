package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/hyponet/eventbus"

	"github.com/opsdeck/console/pkg/types"
)

func BuildResourceEvent(actionType, source string, kind types.Kind, refID string) *types.ResourceEvent {
	return &types.ResourceEvent{
		Id:     uuid.New().String(),
		Type:   actionType,
		Source: source,
		Kind:   kind,
		RefID:  refID,
		Time:   time.Now(),
	}
}

// PublishChanged fans a change event out to every subscriber of the
// kind's topic, the in-process leg of the push invalidation channel.
func PublishChanged(actionType, source string, kind types.Kind, refID string) {
	eventbus.Publish(ResourceChangedTopic(kind), BuildResourceEvent(actionType, source, kind, refID))
}

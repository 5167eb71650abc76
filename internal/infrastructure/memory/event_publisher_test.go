package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wms-platform/location-directive-service/internal/domain"
	sharedtesting "github.com/wms-platform/location-directive-service/shared/pkg/testing"
)

func TestEventPublisher_ConcurrentPublish(t *testing.T) {
	publisher := NewEventPublisher(0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = publisher.Publish(context.Background(), &domain.DirectiveCreatedEvent{DirectiveID: fmt.Sprintf("d-%d", i)})
		}(i)
	}

	sharedtesting.AssertEventually(t, func() bool {
		return len(publisher.Events()) == 20
	}, time.Second, "all events recorded")
	wg.Wait()

	for _, typ := range publisher.EventTypes() {
		assert.Equal(t, domain.EventDirectiveCreated, typ)
	}
}

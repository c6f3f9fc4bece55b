package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
)

// Event is a notification job: a message for one resident. Swap
// lifecycle changes and credential issuance produce these; delivery is
// fire-and-forget and never affects the state change that caused it.
type Event struct {
	ResidentID string `json:"-"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Event
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Event, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case ev := <-wp.jobs:
			log.Printf("Worker %d notifying resident %s", id, ev.ResidentID)
			wp.notifyResident(ctx, ev)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an event for delivery. It never blocks the caller:
// when all workers are busy and the buffer is full the event is
// dropped, because state changes must not wait on delivery.
func (wp *WorkerPool) Dispatch(ev Event) {
	select {
	case wp.jobs <- ev:
	default:
		log.Printf("notification queue full, dropping event for resident %s", ev.ResidentID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Event {
	return wp.jobs
}

// notifyResident fetches the resident's subscriptions and pushes the event.
func (wp *WorkerPool) notifyResident(ctx context.Context, ev Event) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("resident_id = ?", ev.ResidentID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for resident %s: %v", ev.ResidentID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Error encoding notification payload: %v", err)
		return
	}

	log.Printf("Sending %d notifications to resident %s", len(subscriptions), ev.ResidentID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}

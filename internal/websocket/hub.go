package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// AlertHub fans out fraud alerts to connected reviewer dashboards.
// Alerts are advisory: a dashboard that is not connected simply misses
// the live event and reads the record from the store instead.
type AlertHub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// FraudAlert is the event pushed when a submission gets flagged
type FraudAlert struct {
	Type          string    `json:"type"`
	SubmissionID  string    `json:"submissionId"`
	FraudRecordID string    `json:"fraudRecordId"`
	UserID        string    `json:"userId"`
	BatchID       string    `json:"batchId"`
	FindingTypes  []string  `json:"findingTypes"`
	DetectedAt    time.Time `json:"detectedAt"`
}

// NewAlertHub creates a new AlertHub instance
func NewAlertHub() *AlertHub {
	return &AlertHub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run starts the hub's main loop
func (h *AlertHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			log.Printf("👁  Reviewer connected: %s", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
				log.Printf("👋 Reviewer disconnected: %s", client.id)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead; drop the event
					log.Printf("⚠️  Dropping alert for slow reviewer %s", id)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast pushes a fraud alert to every connected reviewer
func (h *AlertHub) Broadcast(alert FraudAlert) {
	alert.Type = "fraud-alert"
	msg, err := json.Marshal(alert)
	if err != nil {
		log.Printf("Error marshaling alert: %v", err)
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		log.Println("⚠️  Alert queue full, dropping fraud alert")
	}
}

// ClientCount returns the number of connected reviewers
func (h *AlertHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

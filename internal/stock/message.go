package stock

import (
	"time"

	"github.com/google/uuid"
)

// UpdateMessage is one requested stock mutation. It is immutable once built;
// fields are only reachable through accessors and the value is copied on
// every hand-off.
type UpdateMessage struct {
	productID     int
	newQuantity   int
	correlationID uuid.UUID
	insertTime    time.Time
}

// NewUpdateMessage builds a message with a fresh correlation id and the
// current UTC time.
func NewUpdateMessage(productID, newQuantity int) UpdateMessage {
	return UpdateMessage{
		productID:     productID,
		newQuantity:   newQuantity,
		correlationID: uuid.New(),
		insertTime:    time.Now().UTC(),
	}
}

func (m UpdateMessage) ProductID() int { return m.productID }
func (m UpdateMessage) NewQuantity() int { return m.newQuantity }
func (m UpdateMessage) CorrelationID() uuid.UUID { return m.correlationID }
func (m UpdateMessage) InsertTime() time.Time { return m.insertTime }

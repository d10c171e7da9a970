// message
package actor

// Envelope is what a transport carries for one delivery: the payload,
// the method being invoked for call-style dispatch (empty for plain
// sends), and the sender's handle when a reply path is wanted. The
// payload's own encoding belongs to the external serialization codec;
// this package only fixes the fields around it.
type Envelope struct {
	Method  string      `json:"method,omitempty"`
	Payload interface{} `json:"payload"`
	Sender  *ActorRef   `json:"sender,omitempty"`
}

// unwrap returns what the target actor should see: the bare payload
// for plain sends, the whole envelope for method calls.
func (e Envelope) unwrap() interface{} {
	if e.Method == "" {
		return e.Payload
	}
	return e
}

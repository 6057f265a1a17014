package models

// Message is one record in a recipient's inbox log. The body is stored
// cipher-transformed; Decrypted flips to true the first time the recipient
// reads the message and never reverts.
type Message struct {
	Id        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Decrypted bool   `json:"decrypted"`
}

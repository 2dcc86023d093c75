package notify

import "net/url"

// pushPayload is the wire shape of an incoming push message.
type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Data  struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Notification is the parsed, resolved form handed to the notifier.
type Notification struct {
	title string
	body  string
	link  url.URL
}

func (n Notification) Title() string {
	return n.title
}

func (n Notification) Body() string {
	return n.body
}

func (n Notification) Link() url.URL {
	return n.link
}

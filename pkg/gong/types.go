package gong

// User is a Gong sales-rep identity. Reference data, immutable once fetched.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Deal is a Gong opportunity/account record. Reference data, immutable once fetched.
type Deal struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccountName string `json:"accountName"`
	OwnerID     string `json:"ownerId"`
}

// Call is a recorded conversation as returned by the listing endpoints.
// Started is the upstream RFC 3339 timestamp, passed through verbatim.
type Call struct {
	ID            string `json:"id"`
	Started       string `json:"started"`
	Title         string `json:"title"`
	PrimaryUserID string `json:"primaryUserId"`
	DealID        string `json:"dealId"`
}

// Filter narrows the calls a POST endpoint operates on. The zero value
// means no narrowing at all.
type Filter struct {
	FromDateTime   string   `json:"fromDateTime,omitempty"`
	ToDateTime     string   `json:"toDateTime,omitempty"`
	CallIDs        []string `json:"callIds,omitempty"`
	PrimaryUserIDs []string `json:"primaryUserIds,omitempty"`
}

// ContentSelector picks which enriched content blocks the extensive
// endpoint includes in its response.
type ContentSelector struct {
	Brief     bool `json:"brief"`
	Outline   bool `json:"outline"`
	NextSteps bool `json:"nextSteps"`
}

// UserRef is a nested rep relation on an enriched call.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AccountRef is a nested account relation on an enriched call.
type AccountRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CallContent is an enriched call record from the extensive endpoint.
// Owner and Account are present only when the upstream attached the
// relation; the content fields are present only when requested and
// generated upstream.
type CallContent struct {
	ID          string      `json:"id"`
	Started     string      `json:"started"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Owner       *UserRef    `json:"owner,omitempty"`
	Account     *AccountRef `json:"account,omitempty"`
	Summary     string      `json:"summary,omitempty"`
	Outline     []string    `json:"outline,omitempty"`
	NextSteps   []string    `json:"nextSteps,omitempty"`
}

// Sentence is one utterance within a transcript segment.
type Sentence struct {
	Start int64  `json:"start"`
	Text  string `json:"text"`
}

// Segment is a run of sentences by a single speaker.
type Segment struct {
	SpeakerID string     `json:"speakerId"`
	Topic     string     `json:"topic,omitempty"`
	Sentences []Sentence `json:"sentences"`
}

// Transcript is the full transcript of one call.
type Transcript struct {
	CallID   string    `json:"callId"`
	Segments []Segment `json:"transcript"`
}

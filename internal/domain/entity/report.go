package entity

type ReportTarget string

const (
	ReportTargetUser    ReportTarget = "user"
	ReportTargetListing ReportTarget = "listing"
	ReportTargetChat    ReportTarget = "chat"
)

type ReportReason string

const (
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonScam          ReportReason = "scam"
	ReportReasonHarassment    ReportReason = "harassment"
	ReportReasonInappropriate ReportReason = "inappropriate"
	ReportReasonProhibited    ReportReason = "prohibited_item"
	ReportReasonOther         ReportReason = "other"
)

var reportReasonLabels = map[ReportReason]string{
	ReportReasonSpam:          "Spam or misleading",
	ReportReasonScam:          "Scam or fraud",
	ReportReasonHarassment:    "Harassment or hate speech",
	ReportReasonInappropriate: "Inappropriate content",
	ReportReasonProhibited:    "Prohibited item",
	ReportReasonOther:         "Something else",
}

func (r ReportReason) Label() (string, bool) {
	label, ok := reportReasonLabels[r]
	return label, ok
}

func (t ReportTarget) Valid() bool {
	switch t {
	case ReportTargetUser, ReportTargetListing, ReportTargetChat:
		return true
	}
	return false
}

type Report struct {
	TargetType  ReportTarget `json:"targetType"`
	TargetID    string       `json:"targetId"`
	Reason      ReportReason `json:"reason"`
	ReasonLabel string       `json:"reasonLabel"`
	Details     string       `json:"details,omitempty"`
	ReporterID  string       `json:"reporterId"`
}

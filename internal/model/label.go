package model

// Label is a classifier verdict.
type Label string

const (
	// LabelMyocardialInfarction is an ECG showing acute myocardial infarction.
	LabelMyocardialInfarction Label = "Myocardial Infarction ECG"
	// LabelHistoryOfMI is an ECG of a patient with a history of MI.
	LabelHistoryOfMI Label = "History of MI ECG"
	// LabelAbnormalHeartbeat is an ECG with an abnormal heartbeat.
	LabelAbnormalHeartbeat Label = "Abnormal Heartbeat ECG"
	// LabelNormal is a normal ECG.
	LabelNormal Label = "Normal ECG"
	// LabelUnavailable is recorded when the classifier could not produce a verdict.
	LabelUnavailable Label = "ModelNotLoaded"
)

// Labels lists the classifier output classes in model output order.
var Labels = []Label{
	LabelMyocardialInfarction,
	LabelHistoryOfMI,
	LabelAbnormalHeartbeat,
	LabelNormal,
}

// Known reports whether l is one of the classifier classes.
func (l Label) Known() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// Unavailable reports whether l is the classifier-unavailable sentinel.
func (l Label) Unavailable() bool {
	return l == LabelUnavailable
}

package enum

import (
	"encoding/json"
)

// DispatchTier is one step of the output fallback chain, in the order the
// steps are tried.
type DispatchTier int

const (
	DispatchTierNamed DispatchTier = iota
	DispatchTierDefault
	DispatchTierManualOpen
	DispatchTierSaved
)

var dispatchTierNames = [...]string{"named", "default", "manual_open", "saved"}

func (t DispatchTier) String() string {
	if int(t) < 0 || int(t) >= len(dispatchTierNames) {
		return "saved"
	}
	return dispatchTierNames[t]
}

// Delivered reports whether the tier put the document in front of someone
// (on paper or on screen).
func (t DispatchTier) Delivered() bool {
	return t != DispatchTierSaved
}

func (t DispatchTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *DispatchTier) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = DispatchTier(i)
		return nil
	}
	for i, name := range dispatchTierNames {
		if name == str {
			*t = DispatchTier(i)
			return nil
		}
	}
	*t = DispatchTierSaved
	return nil
}

package encounter

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestVisitInput_UpdatePayloadCarriesID(t *testing.T) {
	in := visitOn(5)
	in.Status = StatusInProgress
	b, err := json.Marshal(in.UpdatePayload(9))
	if err != nil {
		t.Fatal(err)
	}
	body := string(b)
	for _, want := range []string{`"visitId":9`, `"patientId":1`, `"status":"In Progress"`, `"visitDate":"2024-03-05T09:30:00Z"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in %s", want, body)
		}
	}
}

func TestVisit_DecodesZonelessDate(t *testing.T) {
	var v Visit
	if err := json.Unmarshal([]byte(`{"visitId":3,"patientId":1,"doctorId":2,"visitDate":"2024-03-05T09:30:00","patientName":"Jane Doe"}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.Key() != 3 || v.VisitDate.Hour() != 9 || v.Input().DoctorID != 2 {
		t.Errorf("unexpected visit %+v", v)
	}
}

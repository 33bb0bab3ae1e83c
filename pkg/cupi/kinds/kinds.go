// Package kinds declares the resources that can be administered through the
// provisioning interface, together with thin typed wrappers around entities.
package kinds

import (
	"time"

	"github.com/diwise/cupi-client/pkg/cupi/entities"
)

const (
	ObjectIdField     string = "ObjectId"
	AliasField        string = "Alias"
	DisplayNameField  string = "DisplayName"
	CreationTimeField string = "CreationTime"
	UndeletableField  string = "Undeletable"
	VoiceNameURIField string = "VoiceNameURI"
)

func peekString(e *entities.Entity, name string) string {
	s, _ := e.Peek(name).(string)
	return s
}

func peekInt(e *entities.Entity, name string) int64 {
	i, _ := e.Peek(name).(int64)
	return i
}

func peekBool(e *entities.Entity, name string) bool {
	b, _ := e.Peek(name).(bool)
	return b
}

func peekTime(e *entities.Entity, name string) time.Time {
	t, _ := e.Peek(name).(time.Time)
	return t
}

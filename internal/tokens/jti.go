package tokens

import "github.com/google/uuid"

func newJTI() string {
	return uuid.NewString()
}

package service

import "time"

type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

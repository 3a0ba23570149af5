package collisionstats

import "time"

func (j *JSONMemory) SetFlushInterval(d time.Duration) {
	j.interval = d
}

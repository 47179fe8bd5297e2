//go:build tinygo && rp2040

package rp2040

import (
	"device/rp"
	"runtime/interrupt"
	"time"
)

// The runtime sleeps on alarm 0; the bit timer owns alarm 3.
const alarmBit = 1 << 3

// Alarm is a hal.Ticker on a TIMER alarm.
type Alarm struct {
	intr    interrupt.Interrupt
	period  uint32
	next    uint32
	handler func()
}

var alarm Alarm

// AlarmTicker returns the ticker on TIMER alarm 3. There is only one.
func AlarmTicker() *Alarm {
	return &alarm
}

func alarmIRQ(interrupt.Interrupt) {
	rp.TIMER.INTR.Set(alarmBit)
	alarm.next += alarm.period
	rp.TIMER.ALARM3.Set(alarm.next)
	if h := alarm.handler; h != nil {
		h()
	}
}

// Start implements hal.Ticker. period is rounded to microseconds.
func (t *Alarm) Start(period time.Duration, handler func()) {
	t.Stop()
	if t.intr == (interrupt.Interrupt{}) {
		t.intr = interrupt.New(rp.IRQ_TIMER_IRQ_3, alarmIRQ)
		t.intr.SetPriority(0x00)
	}
	t.period = uint32(period / time.Microsecond)
	t.handler = handler
	t.next = rp.TIMER.TIMERAWL.Get() + t.period
	rp.TIMER.ALARM3.Set(t.next)
	rp.TIMER.INTE.SetBits(alarmBit)
	t.intr.Enable()
}

// Stop implements hal.Ticker.
func (t *Alarm) Stop() {
	rp.TIMER.INTE.ClearBits(alarmBit)
	rp.TIMER.ARMED.Set(alarmBit)
	rp.TIMER.INTR.Set(alarmBit)
	t.handler = nil
}

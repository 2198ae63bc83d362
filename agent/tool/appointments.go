package tool

import (
	"math/rand"
	"sort"
	"time"
)

// AppointmentSlot is one bookable slot in the scheduling window.
type AppointmentSlot struct {
	Date      string `json:"date"`
	Day       string `json:"day"`
	Time      string `json:"time"`
	Doctor    string `json:"doctor"`
	Specialty string `json:"specialty"`
}

const (
	maxAppointmentSlots = 6
	slotsPerDay         = 2
)

var appointmentDoctors = []string{
	"Dr. Sarah Chen",
	"Dr. Michael Torres",
	"Dr. Emily Watson",
	"Dr. James Park",
}

var appointmentTimes = []string{
	"9:00 AM", "10:00 AM", "11:00 AM",
	"2:00 PM", "3:00 PM", "4:00 PM",
}

// GenerateAppointmentSlots walks the upcoming business days in order and
// offers two distinct times on each, stopping at six slots or ten business
// days. Each day's draw is seeded from that day's calendar date, so repeated
// calls for the same date return the same schedule.
func GenerateAppointmentSlots(now time.Time, specialty string) []AppointmentSlot {
	if specialty == "" {
		specialty = "Primary Care"
	}

	slots := make([]AppointmentSlot, 0, maxAppointmentSlots)
	for _, day := range nextBusinessDays(now, 10) {
		if len(slots) >= maxAppointmentSlots {
			break
		}

		rng := rand.New(rand.NewSource(int64(day.Day() + int(day.Month())*31)))
		times := sampleTimeIndexes(rng, slotsPerDay)
		sort.Ints(times)

		for _, idx := range times {
			if len(slots) >= maxAppointmentSlots {
				break
			}
			slots = append(slots, AppointmentSlot{
				Date:      day.Format("2006-01-02"),
				Day:       day.Weekday().String(),
				Time:      appointmentTimes[idx],
				Doctor:    appointmentDoctors[rng.Intn(len(appointmentDoctors))],
				Specialty: specialty,
			})
		}
	}
	return slots
}

// sampleTimeIndexes draws k distinct indexes into appointmentTimes.
func sampleTimeIndexes(rng *rand.Rand, k int) []int {
	return rng.Perm(len(appointmentTimes))[:k]
}

func nextBusinessDays(from time.Time, count int) []time.Time {
	days := make([]time.Time, 0, count)
	day := from
	for len(days) < count {
		day = day.AddDate(0, 0, 1)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, day)
	}
	return days
}

package fatfs

import "time"

// PackTime encodes t in the engine's 32-bit date/time format:
//
//	bit 31:25  year since 1980 (0..127)
//	bit 24:21  month (1..12)
//	bit 20:16  day (1..31)
//	bit 15:11  hour (0..23)
//	bit 10:5   minute (0..59)
//	bit 4:0    second / 2 (0..29)
//
// Times outside 1980..2107 clamp to the nearest representable value.
func PackTime(t time.Time) uint32 {
	year := t.Year() - 1980
	switch {
	case year < 0:
		return packFields(0, 1, 1, 0, 0, 0)
	case year > 127:
		return packFields(127, 12, 31, 23, 59, 58)
	}
	return packFields(year, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

func packFields(year, month, day, hour, minute, second int) uint32 {
	return uint32(year)<<25 |
		uint32(month)<<21 |
		uint32(day)<<16 |
		uint32(hour)<<11 |
		uint32(minute)<<5 |
		uint32(second/2)
}

// UnpackTime decodes a packed timestamp in loc. Seconds come back even.
func UnpackTime(v uint32, loc *time.Location) time.Time {
	return time.Date(
		1980+int(v>>25),
		time.Month(v>>21&0xF),
		int(v>>16&0x1F),
		int(v>>11&0x1F),
		int(v>>5&0x3F),
		int(v&0x1F)*2,
		0, loc)
}

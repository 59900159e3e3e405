package registers

// Channel returns the channel field of the CHANNEL register
func Channel(s *Shadow) uint16 {
	return s.Get(CHANNEL) & ChannelMask
}

// TuneRequested reports whether the TUNE bit is set in the shadow
func TuneRequested(s *Shadow) bool {
	return s.Get(CHANNEL)&ChannelTUNE != 0
}

// ReadChannel returns the channel the chip reports in READCHAN after the last read
func ReadChannel(s *Shadow) uint16 {
	return s.Get(READCHAN) & ReadChanMask
}

// TuneComplete reports whether the STC bit was set at the last read
func TuneComplete(s *Shadow) bool {
	return s.Get(STATUSRSSI)&StatusSTC != 0
}

// Stereo reports whether the chip indicated a stereo signal at the last read
func Stereo(s *Shadow) bool {
	return s.Get(STATUSRSSI)&StatusST != 0
}

// RSSI returns the received signal strength (dBuV) from the last read
func RSSI(s *Shadow) uint8 {
	return uint8(s.Get(STATUSRSSI) & StatusRSSI)
}

// Volume returns the volume nibble of SYSCONFIG2
func Volume(s *Shadow) uint8 {
	return uint8(s.Get(SYSCONFIG2) & Sys2VolumeMask)
}

// SetVolume sets the volume nibble of SYSCONFIG2, masking to four bits
func SetVolume(s *Shadow, volume uint8) {
	s.Modify(SYSCONFIG2, Sys2VolumeMask, uint16(volume))
}

// Band returns the band select field of SYSCONFIG2
func Band(s *Shadow) uint8 {
	return uint8((s.Get(SYSCONFIG2) & Sys2BandMask) >> Sys2BandShift)
}

// Spacing returns the channel spacing field of SYSCONFIG2
func Spacing(s *Shadow) uint8 {
	return uint8((s.Get(SYSCONFIG2) & Sys2SpaceMask) >> Sys2SpaceShift)
}

// Muted reports whether the hard mute is engaged (DMUTE clear)
func Muted(s *Shadow) bool {
	return s.Get(POWERCFG)&PowerDMUTE == 0
}

// Snapshot copies the shadow into a named RegisterMap
func Snapshot(s *Shadow) *RegisterMap {
	return &RegisterMap{
		DEVICEID:   s.Get(DEVICEID),
		CHIPID:     s.Get(CHIPID),
		POWERCFG:   s.Get(POWERCFG),
		CHANNEL:    s.Get(CHANNEL),
		SYSCONFIG1: s.Get(SYSCONFIG1),
		SYSCONFIG2: s.Get(SYSCONFIG2),
		SYSCONFIG3: s.Get(SYSCONFIG3),
		TEST1:      s.Get(TEST1),
		TEST2:      s.Get(TEST2),
		BOOTCONFIG: s.Get(BOOTCONFIG),
		STATUSRSSI: s.Get(STATUSRSSI),
		READCHAN:   s.Get(READCHAN),
		RDSA:       s.Get(RDSA),
		RDSB:       s.Get(RDSB),
		RDSC:       s.Get(RDSC),
		RDSD:       s.Get(RDSD),
	}
}

package engine

import "strconv"

// speakerBitNames maps Windows multichannel speaker-position bit indices
// to the channel names config.txt conditions and Copy: directives
// refer to by name. Unmapped bits fall back to their 1-based ordinal
// among the set bits.
var speakerBitNames = map[int]string{
	0: "L", 1: "R", 2: "C", 3: "SUB",
	4: "RL", 5: "RR", 8: "RC", 9: "SL", 10: "SR",
}

// channelNamesFromMask derives the ordered channel name list a compile
// needs from a device's channel mask, bit-scanning the low 31 bits in
// order and falling back to a numeric name for bits the mask sets but
// speakerBitNames doesn't cover. If the mask covers fewer channels than
// minChannels, the remainder are padded with consecutive numeric names
// so every physical channel still gets an address.
func channelNamesFromMask(mask uint32, minChannels int) []string {
	var names []string

	c := 1
	for i := 0; i < 31; i++ {
		bit := uint32(1) << uint(i)
		if mask&bit == 0 {
			continue
		}

		if name, ok := speakerBitNames[i]; ok {
			names = append(names, name)
		} else {
			names = append(names, strconv.Itoa(c))
		}

		c++
	}

	for ; c <= minChannels; c++ {
		names = append(names, strconv.Itoa(c))
	}

	return names
}

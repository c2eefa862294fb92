package subchannel

import "github.com/dbehnke/dabmod/pkg/daberr"

// eepRules returns the puncturing rules for equal error protection
// (long form), option 0 (protection level A) or 1 (protection level
// B), given the subchannel bitrate in kb/s.
func eepRules(option, level int, bitrate int) ([]PuncturingRule, error) {
	if option == 0 {
		switch level {
		case 1:
			return []PuncturingRule{
				rule(((6*bitrate/8)-3)*16, p24),
				rule(3*16, p23),
			}, nil
		case 2:
			if bitrate == 8 {
				return []PuncturingRule{
					rule(5*16, p13),
					rule(1*16, p12),
				}, nil
			}
			return []PuncturingRule{
				rule(((2*bitrate/8)-3)*16, p14),
				rule(((4*bitrate/8)+3)*16, p13),
			}, nil
		case 3:
			return []PuncturingRule{
				rule(((6*bitrate/8)-3)*16, p8),
				rule(3*16, p7),
			}, nil
		case 4:
			return []PuncturingRule{
				rule(((4*bitrate/8)-3)*16, p3),
				rule(((2*bitrate/8)+3)*16, p2),
			}, nil
		}
	} else if option == 1 {
		switch level {
		case 1:
			return []PuncturingRule{
				rule(((24*bitrate/32)-3)*16, p10),
				rule(3*16, p9),
			}, nil
		case 2:
			return []PuncturingRule{
				rule(((24*bitrate/32)-3)*16, p6),
				rule(3*16, p5),
			}, nil
		case 3:
			return []PuncturingRule{
				rule(((24*bitrate/32)-3)*16, p4),
				rule(3*16, p3),
			}, nil
		case 4:
			return []PuncturingRule{
				rule(((24*bitrate/32)-3)*16, p2),
				rule(3*16, p1),
			}, nil
		}
		return nil, daberr.NewConfig("unknown EEP protection level %d for option %d", level, option)
	} else {
		return nil, daberr.NewConfig("unknown EEP protection option %d", option)
	}
	return nil, daberr.NewConfig("unknown EEP protection level %d for option %d", level, option)
}

// uepTable maps bitrate -> protection level -> rule sequence, for the
// unequal error protection (short form) table. A missing (bitrate,
// level) combination is a ConfigError, not a silent fallback.
var uepTable = map[int]map[int][]PuncturingRule{
	32: {
		1: {rule(3*16, p24), rule(5*16, p17), rule(13*16, p12), rule(3*16, p17)},
		2: {rule(3*16, p22), rule(4*16, p13), rule(14*16, p8), rule(3*16, p13)},
		3: {rule(3*16, p15), rule(4*16, p9), rule(14*16, p6), rule(3*16, p8)},
		4: {rule(3*16, p11), rule(3*16, p6), rule(18*16, p5)},
		5: {rule(3*16, p5), rule(4*16, p3), rule(17*16, p2)},
	},
	48: {
		1: {rule(3*16, p24), rule(5*16, p18), rule(25*16, p13), rule(3*16, p18)},
		2: {rule(3*16, p24), rule(4*16, p14), rule(26*16, p8), rule(3*16, p15)},
		3: {rule(3*16, p15), rule(4*16, p10), rule(26*16, p6), rule(3*16, p9)},
		4: {rule(3*16, p9), rule(4*16, p6), rule(26*16, p4), rule(3*16, p6)},
		5: {rule(4*16, p5), rule(3*16, p4), rule(26*16, p2), rule(3*16, p3)},
	},
	56: {
		2: {rule(6*16, p23), rule(10*16, p13), rule(23*16, p8), rule(3*16, p13)},
		3: {rule(6*16, p16), rule(12*16, p7), rule(21*16, p6), rule(3*16, p9)},
		4: {rule(6*16, p9), rule(10*16, p6), rule(23*16, p4), rule(3*16, p5)},
		5: {rule(6*16, p5), rule(10*16, p4), rule(23*16, p2), rule(3*16, p3)},
	},
	64: {
		1: {rule(6*16, p24), rule(11*16, p18), rule(28*16, p12), rule(3*16, p18)},
		2: {rule(6*16, p23), rule(10*16, p13), rule(29*16, p8), rule(3*16, p13)},
		3: {rule(6*16, p16), rule(12*16, p8), rule(27*16, p6), rule(3*16, p9)},
		4: {rule(6*16, p11), rule(9*16, p6), rule(33*16, p5)},
		5: {rule(6*16, p5), rule(9*16, p3), rule(31*16, p2), rule(2*16, p3)},
	},
	80: {
		1: {rule(6*16, p24), rule(10*16, p17), rule(41*16, p12), rule(3*16, p18)},
		2: {rule(6*16, p23), rule(10*16, p13), rule(41*16, p8), rule(3*16, p13)},
		3: {rule(6*16, p16), rule(11*16, p8), rule(40*16, p6), rule(3*16, p7)},
		4: {rule(6*16, p11), rule(10*16, p6), rule(41*16, p5), rule(3*16, p6)},
		5: {rule(6*16, p6), rule(10*16, p3), rule(41*16, p2), rule(3*16, p3)},
	},
	96: {
		1: {rule(6*16, p24), rule(13*16, p18), rule(50*16, p13), rule(3*16, p19)},
		2: {rule(6*16, p22), rule(10*16, p12), rule(53*16, p9), rule(3*16, p12)},
		3: {rule(6*16, p16), rule(12*16, p9), rule(51*16, p6), rule(3*16, p10)},
		4: {rule(7*16, p9), rule(10*16, p6), rule(52*16, p4), rule(3*16, p6)},
		5: {rule(7*16, p5), rule(9*16, p4), rule(53*16, p2), rule(3*16, p4)},
	},
	112: {
		2: {rule(11*16, p23), rule(21*16, p12), rule(49*16, p9), rule(3*16, p14)},
		3: {rule(11*16, p16), rule(23*16, p8), rule(47*16, p6), rule(3*16, p9)},
		4: {rule(11*16, p9), rule(21*16, p6), rule(49*16, p4), rule(3*16, p8)},
		5: {rule(14*16, p5), rule(17*16, p4), rule(50*16, p2), rule(3*16, p5)},
	},
	128: {
		1: {rule(11*16, p24), rule(20*16, p17), rule(62*16, p13), rule(3*16, p19)},
		2: {rule(11*16, p22), rule(21*16, p12), rule(61*16, p9), rule(3*16, p14)},
		3: {rule(11*16, p16), rule(22*16, p9), rule(60*16, p6), rule(3*16, p10)},
		4: {rule(11*16, p11), rule(21*16, p6), rule(61*16, p5), rule(3*16, p7)},
		5: {rule(12*16, p5), rule(19*16, p3), rule(62*16, p2), rule(3*16, p4)},
	},
	160: {
		1: {rule(11*16, p24), rule(22*16, p18), rule(84*16, p12), rule(3*16, p19)},
		2: {rule(11*16, p22), rule(21*16, p11), rule(85*16, p9), rule(3*16, p13)},
		3: {rule(11*16, p16), rule(24*16, p8), rule(82*16, p6), rule(3*16, p11)},
		4: {rule(11*16, p11), rule(23*16, p6), rule(83*16, p5), rule(3*16, p9)},
		5: {rule(11*16, p5), rule(19*16, p4), rule(87*16, p2), rule(3*16, p4)},
	},
	192: {
		1: {rule(11*16, p24), rule(21*16, p20), rule(109*16, p13), rule(3*16, p24)},
		2: {rule(11*16, p22), rule(20*16, p13), rule(110*16, p9), rule(3*16, p13)},
		3: {rule(11*16, p16), rule(24*16, p10), rule(106*16, p6), rule(3*16, p11)},
		4: {rule(11*16, p10), rule(22*16, p6), rule(108*16, p4), rule(3*16, p9)},
		5: {rule(11*16, p6), rule(20*16, p4), rule(110*16, p2), rule(3*16, p5)},
	},
	224: {
		1: {rule(11*16, p24), rule(24*16, p20), rule(130*16, p12), rule(3*16, p20)},
		2: {rule(11*16, p24), rule(22*16, p16), rule(132*16, p10), rule(3*16, p15)},
		3: {rule(11*16, p16), rule(20*16, p10), rule(134*16, p7), rule(3*16, p9)},
		4: {rule(12*16, p12), rule(26*16, p8), rule(127*16, p4), rule(3*16, p11)},
		5: {rule(12*16, p8), rule(22*16, p6), rule(131*16, p2), rule(3*16, p6)},
	},
	256: {
		1: {rule(11*16, p24), rule(26*16, p19), rule(152*16, p14), rule(3*16, p18)},
		2: {rule(11*16, p24), rule(22*16, p14), rule(156*16, p10), rule(3*16, p13)},
		3: {rule(11*16, p16), rule(27*16, p10), rule(151*16, p7), rule(3*16, p10)},
		4: {rule(11*16, p12), rule(24*16, p9), rule(154*16, p5), rule(3*16, p10)},
		5: {rule(11*16, p6), rule(24*16, p5), rule(154*16, p2), rule(3*16, p5)},
	},
	320: {
		2: {rule(11*16, p24), rule(26*16, p17), rule(200*16, p9), rule(3*16, p17)},
		4: {rule(11*16, p13), rule(25*16, p9), rule(201*16, p5), rule(3*16, p10)},
		5: {rule(11*16, p8), rule(26*16, p5), rule(200*16, p2), rule(3*16, p6)},
	},
	384: {
		1: {rule(12*16, p24), rule(28*16, p20), rule(245*16, p14), rule(3*16, p23)},
		3: {rule(11*16, p16), rule(24*16, p9), rule(250*16, p7), rule(3*16, p10)},
		5: {rule(11*16, p8), rule(27*16, p6), rule(247*16, p2), rule(3*16, p7)},
	},
}

func uepRules(bitrate, level int) ([]PuncturingRule, error) {
	levels, ok := uepTable[bitrate]
	if !ok {
		return nil, daberr.NewConfig("unsupported UEP bitrate %d kb/s", bitrate)
	}
	rules, ok := levels[level]
	if !ok {
		return nil, daberr.NewConfig("unsupported UEP protection level %d at %d kb/s", level, bitrate)
	}
	return rules, nil
}

// ficRules returns the fixed puncturing rules used for the FIC, which
// does not carry a TPL of its own: 32 CIF bytes per block when the
// ensemble carries an enhanced FIC (mid==3), 24 otherwise.
func ficRules(mid uint8) []PuncturingRule {
	if mid == 3 {
		return []PuncturingRule{
			rule(29*16, 0xeeeeeeee),
			rule(3*16, 0xeeeeeeec),
		}
	}
	return []PuncturingRule{
		rule(21*16, 0xeeeeeeee),
		rule(3*16, 0xeeeeeeec),
	}
}

package fp

// Field constants for the CSIDH-512 prime p = 4*l_1*...*l_74 - 1, where the
// l_i are the first 73 odd primes together with 587. Montgomery constants use
// R = 2^512.

// Limbs is the number of 64-bit limbs of a field element.
const Limbs = 8

// inv is -p^-1 mod 2^64.
const inv = 0x66c1301f632e294d

// p, little-endian limbs.
var prime = [Limbs]uint64{
	0x1b81b90533c6c87b, 0xc2721bf457aca835,
	0x516730cc1f0b4f25, 0xa7aac6c567f35507,
	0x5afbfcc69322c9cd, 0xb42d083aedc88c42,
	0xfc8ab0d15e3e4c4a, 0x65b48e8f740f89bf,
}

// (p-1)/2, used when sampling Elligator inputs below the half-line.
var halfPrime = [Limbs]uint64{
	0x8dc0dc8299e3643d, 0xe1390dfa2bd6541a,
	0xa8b398660f85a792, 0xd3d56362b3f9aa83,
	0x2d7dfe63499164e6, 0x5a16841d76e44621,
	0xfe455868af1f2625, 0x32da4747ba07c4df,
}

// R mod p (the Montgomery representation of 1).
var oneMont = [Limbs]uint64{
	0xc8fc8df598726f0a, 0x7b1bc81750a6af95,
	0x5d319e67c1e961b4, 0xb0aa7275301955f1,
	0x4a080672d9ba6c64, 0x97a5ef8a246ee77b,
	0x06ea9e5d4383676a, 0x3496e2e117e0ec80,
}

// R^2 mod p, for conversion into Montgomery form.
var r2Mont = [Limbs]uint64{
	0x36905b572ffc1724, 0x67086f4525f1f27d,
	0x4faf3fbfd22370ca, 0x192ea214bcc584b1,
	0x5dae03ee2f5de3d0, 0x1e9248731776b371,
	0xad5f166e20e4f52d, 0x4ed759aea6f3917e,
}

// R^3 mod p, for converting divstep output back into Montgomery form.
var r3Mont = [Limbs]uint64{
	0x341ef990c8683cd4, 0x48fc07393319dbc3,
	0xda2d11571f166aeb, 0x1d18084ab6f4aaa4,
	0xcebf1160e1702bd4, 0x5180f718e38efb44,
	0x8d6906ce0ea454d8, 0x3a2040489894ff06,
}

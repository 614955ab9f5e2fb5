package montgomery

import (
	crand "crypto/rand"
	"testing"

	"csifish/classgroup"
	"csifish/fp"
)

func elem(t *testing.T, hex string) fp.Element {
	t.Helper()
	var e fp.Element
	e.SetHex(hex)
	return e
}

func pointFromHex(t *testing.T, hex string) Point {
	t.Helper()
	return PointFromX(elem(t, hex))
}

// scaledCurve builds a curve with a projectivized coefficient a*m : m, to
// exercise the formulas away from Z = 1.
func scaledCurve(t *testing.T, aHex, mHex string) Curve {
	t.Helper()
	m := elem(t, mHex)
	c := NewCurve(elem(t, aHex))
	c.A.X.Mul(&c.A.X, &m)
	c.A.Z.Mul(&c.A.Z, &m)
	return c
}

func sameX(t *testing.T, got, want *Point) bool {
	t.Helper()
	g := got.Normalize()
	w := want.Normalize()
	return g.X.Equal(&w.X)
}

const zeroHex = "00000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000"

func TestDifferentialAdd(t *testing.T) {
	e := scaledCurve(t, zeroHex,
		"54C8A0DADC3C7B204FDF48616AF757968326DC25866F018424FCD27D45C809CAC0D3F58553D6CB42704819843C67406977C51CD790BE78350FADAB6CB72AFA8D")
	p := pointFromHex(t, "2C269236F8C147E177F0A3B5C95EA91A4C04DE1BBA1FFC84622CE367805C8551A7D628FFEA33900BA7F6F90F65AA0EAFEA189CEC225A1730B7F1E28FF2C253B4")
	q := pointFromHex(t, "258DD34D9A793CE8396185303C65012683D12744E672B2195B38D7A2DF26242024C3E8740CCAFD3071388C488266E2BBCBA9F5B3F2D4252CBCDB4EF69DD58EDB")
	sum := pointFromHex(t, "55DA2197E667E35145692AB34A06D9C62A379533C8430B98295F3F0A6828682BC7046F3DF84760F6C22CBBEA55B67EF83C53AB1CF103DE0CF0774719D9038C46")
	diff := pointFromHex(t, "5A54CDD887887905BB57A2FB2C5D108A361052CAF9B80E93812C69E5BF5EA6C9869F43748FB12937C5A91C999AAF4A5D0CBA6A0B9B67A8339F15DA786626F7F3")
	if got := e.DifferentialAdd(&p, &q, &sum); !sameX(t, &got, &diff) {
		t.Fatal("P-Q from P, Q, P+Q is wrong on the base curve")
	}
	if got := e.DifferentialAdd(&p, &q, &diff); !sameX(t, &got, &sum) {
		t.Fatal("P+Q from P, Q, P-Q is wrong on the base curve")
	}

	e = scaledCurve(t,
		"47D112C8D0BBF39D1983F677BE0CD423445C8BACA91B516EB3350F1CB95FFB454F4B0C18CE2EA540CE7B0932B951B365511CDBB82458DCA4D0ABBA04DB00D84D",
		"52C521933A01AD67352ABAEE2BB6FDB4025BA653A1B6C5C8B939B5647EF56A8111640A7717FEEB38967FE1F7B653384D1E4C5E4DAA76686F97CA4DC9E405C543")
	p = pointFromHex(t, "55D5F791250BF6F55EF6DCDE2F1249DB59DAEA4FDAB940A53FC796293B137D58FC0888CF466C523C21EED52CDA1554705E3ECE421FDB0653E052DE3009F60C29")
	q = pointFromHex(t, "38AC0C3673F3DE0E5C049EA68C97CE5261EEE5EC6BB02F568E0D3B70A40E139F22C64995A40B1B5F90D3AFF943557C0E14BB8227C477FC7E822C5787450198DB")
	sum = pointFromHex(t, "5C58A818F02D09EF5DC1CAABEC133D07D3D9EFB98984B1DD9B7636D4A4FBC6B47FBF51FCDB71570CE00C723F4083CF4E70F1467077FC99B0AB746004ECC445BD")
	diff = pointFromHex(t, "174B7233B392E09C38F7DB5DA5D352585FBE4D16CBD626404D894CA3407AB399400FD9FFE0FDF1C76ADB7F11955F88F45805EBDD727271F5465BEB39D96E6782")
	if got := e.DifferentialAdd(&p, &q, &sum); !sameX(t, &got, &diff) {
		t.Fatal("P-Q from P, Q, P+Q is wrong on a general curve")
	}
	if got := e.DifferentialAdd(&p, &q, &diff); !sameX(t, &got, &sum) {
		t.Fatal("P+Q from P, Q, P-Q is wrong on a general curve")
	}
}

func TestDouble(t *testing.T) {
	e := scaledCurve(t, zeroHex,
		"09F4B54FF7BCF319672BEDF8D865F241C27D52BE5D70F8E4BD18806AF9E5BFF3FC85635574EC6D8513679E8F1BBE290672AC5AB4A0106D05C10DD74B758F2589")
	p := pointFromHex(t, "24FECD3460B2F53C30EC39BE2E4CE435EAC8EE1E5E57CC2A022D9C885F941346D78DFA27AF0BE7CBFE913E461310BB5713A85D7AC02AAD5B8E802D2F7D045199")
	q := pointFromHex(t, "50809AE8A1F22F00D2D655E4E6E7580A1C868E59AE4BE4E98A7AF3FD3BB0A26C24724B6E0C98EFA529C914E7F5DFA89D1CBBCEF8E2DB859AB9538A7787B10EFB")
	twoP := pointFromHex(t, "08D21FCB978BE16F2A6A9A5753418098BE7CE928B417E4672B448F99029BF4F9D771C6AE5356889A0A7F0DD30AC467343CEDFD25BDE221C8B82B9D208CB3F2C1")
	twoQ := pointFromHex(t, "02C862DCE53D5BE8C3FDDBC31152CAF717D52579033EF877E8DCAD1BF333C3B590D045023BD3B365D0FB0EDDAFB2D74871BA618EAB37C285B91CD83CF395F848")
	if got := e.Double(&p); !sameX(t, &got, &twoP) {
		t.Fatal("2P wrong on the base curve")
	}
	if got := e.Double(&q); !sameX(t, &got, &twoQ) {
		t.Fatal("2Q wrong on the base curve")
	}

	e = scaledCurve(t,
		"20A24B2BE41B432B63B7C485E95F781E344744881BB3C9C36A10995DFB62592FFFDF6EAEA75F632894CC2D30F0C273AF4002D580E272FC2B4EB2C46730A6D7CD",
		"3DB6207324441ECC3884C3865E972993CA0C239CAABDC1E4BFEB70E73CA776A83C8AF9E383B93CEDE3E6BA05503D422EEE7FAA5484F4711E69939FA3FDF7DD97")
	p = pointFromHex(t, "228B3C1B541F1C50E6E46545E9E3E26F747EC6D18D436CD02DA23B8AF7A37FD81F1132833AC5F96EBD3AF861F2CD83EAF429017B859EB55D6A7BAF514849B1BB")
	q = pointFromHex(t, "3F53508C3824E5B18630C63E35FD312E39B36345E7BA855D1AE5DA044682327A8FBE7627C46E707CD4E5F87BD0EB191D366DC0A7D7F2ECDFC7E6F9ECFC6A55D2")
	twoP = pointFromHex(t, "29306C62A1CFDDDEFE22DB90F5C3BF81DDA85BF6F25B45F37D6ECA62D633066CE47D707B9698EED38F1C2FD9D60E13EF33B712603FEE555A2EEFF68177B50A47")
	twoQ = pointFromHex(t, "0E417B11BA938C20C957E22F787757DD7B138C633DF90F529DD0EC490A7FA49E847644AE5728E981DDCFC24D37B93EF169502C66FDBDE16D6D0A986DB0640738")
	if got := e.Double(&p); !sameX(t, &got, &twoP) {
		t.Fatal("2P wrong on a general curve")
	}
	if got := e.Double(&q); !sameX(t, &got, &twoQ) {
		t.Fatal("2Q wrong on a general curve")
	}
}

func TestTwoPointIsogeny(t *testing.T) {
	cases := []struct {
		a, b    string
		ell     uint64
		k, p    string
		imageP  string
	}{
		{
			a:      zeroHex,
			b:      "53BAA451F759835A01933C76BC58C0C203A9B6B02F7F086B30C3469A8452750AAECA8A4F7C26BFF43876F4510F405F4D2A006635D89A42D327D9A2E8C00BF340",
			ell:    3,
			k:      "22B668C942BF7D5F5DF869A215F7E9463A0A873CFE2953721F129EC98B8123A8E62DF0D1F100AA92F4C6C8552AD62C42C11DB1AE8540F46ADC16D8939808553A",
			p:      "0A3A72458C434F22FD1F2B441C3BAD38C0C069872F69372A43E818126CFF49DC3CA63E87BC5F0443201F9DA03EFE8DA618C4D207954D40F774A923CBC11F2CA7",
			imageP: "1ED168610F98DC95AAB55E2B067E92B32AF0A436A73EF7142F31BC3CBE2A532F8D51061DA110C5EB01FEC1838C6D0AA3B643D90181AAA3184CF02ABB20ECFB2A",
		},
		{
			a:      "48211766D23E629D22C38ED44B3D8A02622B7022E5CE2CE5CCF7CDD4F901213AE61B00371E74AD24C9F71C59C0B0269287B36EC9652F4ACC421B8975C8C9EE4F",
			b:      "20B68C844B20BBA2271497C8ECD471D2EB0E3640A3D238F142C13C3C86BDF9D2F758186586740B2A15F9709E18F93F7894704B23CCBB533AC8AD2F1031AE309B",
			ell:    5,
			k:      "409548FAF7B5117391A5AD4D1202CA9EE096D69F44188441796F2ACED23C0C21DA29C9286AD5A46636CE1E41F9F54CEF4F453F7EFFCD595E168CC519DD68EA51",
			p:      "3B2DC0FD5EE8C65F43DAD597D8C48C32138A9FE4A1008802D5CED33523731EB432469E2D7F2276625E3DF38566576180E559E1C13D5F9565696A6D0D83830FF4",
			imageP: "3BF01DE995EB675B0C2303367BC0FC3F82AC3D7123F842DEC8DE1E34F6FE14FBFDC1BDF203914BF7F6C52A7AF66CA745D4C682A4D1C9F40D1D5CFB066BB46B2D",
		},
		{
			a:      "48912381B13014DF7E10F242424DFE6D43860ED48A2913843A45E75E15615849B2E2C8191E6CEF70A931E20883E8B59B87046926B8E534DCA88722A8E204496C",
			b:      "4E7D723C463A2F779721CD1F53CB1F2F3F9ECEB60E1831A2DDC665687C1F7BD1B479670592F4967DFAD3F9675B6229ED2B4ECFC2AAE33258DAF6A1B5CCBF2B78",
			ell:    173,
			k:      "54C8CDA4F5B40B4DD5EF9011AFA313195A68106114B157B53270CB1005C8338E4CE00C826ECEE406027F383FA1D5037DBB81D92E4203B4092B9C3D20A32D49A8",
			p:      "55E59A6BB770F1477F38E747D4C45F61CDA4D068736398DCB7C3A6B872208E6BA55FA42377A4B3EB25AEF4D0CE59C91A1D3A291B87700FFFE21805A7DEED199B",
			imageP: "5BBC4E76109DAF1BCC7A597C78DCA56C1645CA6C72859B3F316F972054BF200C0F8059E2CCD9B1886F7518230CC5A75E210A3A5C07D843FF79BD832B675E1BD3",
		},
		{
			a:      "4F80CF43DC32028D21AF9A4596C7067352C764156B62056D1DBC2A528E367DAC0BC65E453F01864DF53E0A775E064988EDD71034EBE1D5B95C1235F11DC6ACFD",
			b:      "1AFAA394A786BAEB11895EE8A455AE6A6872C74C9D2F0F47773AAB2FD1481BACC7695E7B81177C643C054D3BD36268F5ABD7AE225EEBEFA531F9153F532E4BA5",
			ell:    83,
			k:      "425A0D7407BF49078B071367E138506CDF3CF5C5231384524F9C62C7E84BF1536C47B5AC7B981BD1D8B8A4FF5ED0A75471F0D80ED1515CE18C2D31780929FD58",
			p:      "1C33BAADF7E34ACA1AFE98CEF02BA3948B0A09A2996BC9BC2C28A4E33A4943E8FA63370DF59C0CDA3C1D943473E50B2D4334DEE8263F6CF6450619460BF09DC4",
			imageP: "46C02021FCC07A06A4C41958C3C40EB31DF7D10947C1021FE2638A9DADB7C8792D8EC0271FE63DFDE0BF6E1B4D44E550A9606DC91541DC15263292469892BD8D",
		},
		{
			a:      "38C29C0734D6DD3278A7DCDB797A4D8D1E6C41ADAC0FA768EE3BF9EE8FBC3EECE077F09DE1644631226B822B3BA01868DE4A9E7603DADA2D024BB5B16E083020",
			b:      "2FDC10B37A9570DFA25AEE9482802ECDC60E7D5D47B6E06AC5C3114BA70DDF38C6D820DFAD5A126794DC0CCF78A3BB91283DEAE9D6B540EB45506934D5C145B7",
			ell:    149,
			k:      "5E9D1A6638D9610AE0568BC36A483E512E3AC582C45E79A5388D0C213F7315052B4B74784F468E9D5CE9EA882D9511AF4A7B92E7CDEC4D5AE22D32D8B9F805DE",
			p:      "35EE2441FB15C6C330837FA2950A9860C33A14E6847D78DE6EB62FF85291477CEB7E69CE825B88637283A87379AC17D3A1E319A2D95172CFFC31FE6380C54749",
			imageP: "3A12C8F02C85892393291F5860DB7B8C86C198FE89B44B165A91E9C05F185896C036B64331A418347706C6D124B73AECE248925112F207E3E53114FEECE14545",
		},
	}
	for _, tc := range cases {
		ea := NewCurve(elem(t, tc.a))
		k := pointFromHex(t, tc.k)
		p := pointFromHex(t, tc.p)
		imP := pointFromHex(t, tc.imageP)
		q1, _, cod := ea.TwoPointIsogeny(&k, tc.ell, &p, &p)
		codN, err := cod.Normalized()
		if err != nil {
			t.Fatalf("degree %d: codomain: %v", tc.ell, err)
		}
		want := elem(t, tc.b)
		if !codN.A.X.Equal(&want) {
			t.Fatalf("degree %d: wrong codomain coefficient", tc.ell)
		}
		if !sameX(t, &q1, &imP) {
			t.Fatalf("degree %d: wrong image point", tc.ell)
		}
	}
}

var actionExp1 = classgroup.Vector{
	-5, 2, 0, -3, 4, -4, -5, 3, 5, -1, -2, -4, 0, -2, -3, 3, 1, -2, 5, 3, 4, 3, -4, 2, 2,
	3, -1, 0, 1, -3, 0, 1, -5, -2, 0, 2, 0, 0, -5, 5, 4, 5, 0, -5, 0, -1, 0, 1, 5, 1, 1,
	-3, 0, 5, 1, 2, -1, 1, -5, 0, 1, 5, 3, 2, -1, -5, 4, 2, 1, 2, -2, 0, 1, 5,
}

var actionExp2 = classgroup.Vector{
	1, -2, 5, 1, 2, 4, -1, 0, -2, -1, 2, 5, -3, 3, 3, -1, -2, -1, 0, -5, -1, -1, -5, 4, 2,
	-1, -1, -5, -4, -3, 4, 1, 4, -2, 4, -5, 3, -1, 1, 2, 0, 4, 1, -5, 4, 1, 4, -1, 0, -5,
	3, -2, -3, 0, -1, 4, 3, -2, -5, -5, 4, 3, 2, 1, -2, 3, 3, -2, -3, -5, 5, 3, -5, 2,
}

const (
	actionImage1 = "2D3F42F31F984ACE1F45E62D35F7C9936BA51863A204A7AF9562DF7822E01323EAECAB2D86BBA42CB9B1DAA7DAA565800BD5BF35A0297218E8CBDB0399618180"
	actionImage2 = "09EB001955B4E84ECFFE86806E0C8313800D0475CFF3519FAF30DC5F3A060E97AE258051DABED0245406DF3BD41B4A03F3C7756C2DE8DE4AD28AC8CD8D506695"
	actionImage3 = "2BA3EBCD76B29349F525D3B73BA841065926870C3A1F23902EF53652D880BCF6E8D2705B2F94E23551BBFE9F4FD9A4DA1EADF24EA62DC2A7F425A8EB901E31A6"
)

func curveCoeff(t *testing.T, c Curve) fp.Element {
	t.Helper()
	n, err := c.Normalized()
	if err != nil {
		t.Fatalf("normalizing curve: %v", err)
	}
	return n.A.X
}

func TestActKnownAnswers(t *testing.T) {
	base := BaseCurve()

	c1, err := Act(&actionExp1, base, crand.Reader)
	if err != nil {
		t.Fatalf("action: %v", err)
	}
	want1 := elem(t, actionImage1)
	if got := curveCoeff(t, c1); !got.Equal(&want1) {
		t.Fatal("action of the first known vector is wrong")
	}

	c2, err := Act(&actionExp2, base, crand.Reader)
	if err != nil {
		t.Fatalf("action: %v", err)
	}
	want2 := elem(t, actionImage2)
	if got := curveCoeff(t, c2); !got.Equal(&want2) {
		t.Fatal("action of the second known vector is wrong")
	}

	// the action is commutative
	want3 := elem(t, actionImage3)
	c12, err := Act(&actionExp2, c1, crand.Reader)
	if err != nil {
		t.Fatalf("action: %v", err)
	}
	if got := curveCoeff(t, c12); !got.Equal(&want3) {
		t.Fatal("composed action g2*g1 is wrong")
	}
	c21, err := Act(&actionExp1, c2, crand.Reader)
	if err != nil {
		t.Fatalf("action: %v", err)
	}
	if got := curveCoeff(t, c21); !got.Equal(&want3) {
		t.Fatal("composed action g1*g2 is wrong")
	}
}

func TestActBlindedMatchesAct(t *testing.T) {
	base := BaseCurve()
	c1, err := ActBlinded(&actionExp1, base, crand.Reader)
	if err != nil {
		t.Fatalf("blinded action: %v", err)
	}
	want1 := elem(t, actionImage1)
	if got := curveCoeff(t, c1); !got.Equal(&want1) {
		t.Fatal("blinded action disagrees with the known image")
	}
}

func TestActInverse(t *testing.T) {
	v := classgroup.Vector{}
	for i := range v {
		v[i] = int16((i % 5) - 2)
	}
	base := BaseCurve()
	fwd, err := Act(&v, base, crand.Reader)
	if err != nil {
		t.Fatalf("action: %v", err)
	}
	neg := v.Neg()
	back, err := Act(&neg, fwd, crand.Reader)
	if err != nil {
		t.Fatalf("inverse action: %v", err)
	}
	if !back.Equal(&base) {
		t.Fatal("v then -v did not return to the base curve")
	}
}

func TestTwistAction(t *testing.T) {
	// [v] on the twist equals the twist of [-v]: check via the base curve,
	// which is its own twist.
	base := BaseCurve()
	tw := base.Twist()
	if !tw.Equal(&base) {
		t.Fatal("the base curve is not its own twist")
	}

	v := classgroup.Vector{}
	v[0], v[3], v[73] = 2, -1, 1
	c, err := Act(&v, base, crand.Reader)
	if err != nil {
		t.Fatalf("action: %v", err)
	}
	ctw := c.Twist()
	neg := v.Neg()
	want, err := Act(&neg, base, crand.Reader)
	if err != nil {
		t.Fatalf("action: %v", err)
	}
	if !ctw.Equal(&want) {
		t.Fatal("twist does not invert the action")
	}
}

func TestCurveEncoding(t *testing.T) {
	c := NewCurve(elem(t, actionImage1))
	b, err := c.Bytes()
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}
	d, err := CurveFromBytes(b[:])
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !c.Equal(&d) {
		t.Fatal("round trip changed the curve")
	}
	if _, err := CurveFromBytes(b[:CurveSize-1]); err == nil {
		t.Fatal("accepted a truncated encoding")
	}
}

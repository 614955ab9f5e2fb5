// Command csifish generates CSI-FiSh key pairs, signs messages, and
// verifies signatures. Keys and signatures are stored as hex-encoded JSON
// under a key directory (default ./csifish_keys).
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"csifish"
	"csifish/measure"
	"csifish/prof"
)

type publicFile struct {
	Params string `json:"params"`
	Public string `json:"public"`
}

type privateFile struct {
	Params string `json:"params"`
	Secret string `json:"secret"`
}

type signatureFile struct {
	Params    string `json:"params"`
	Signature string `json:"signature"`
}

func paramSet(name string) (csifish.ParamSet, error) {
	switch name {
	case "128":
		return csifish.ParamSet128, nil
	case "compact":
		return csifish.ParamSetCompact, nil
	}
	return csifish.ParamSet{}, fmt.Errorf("unknown parameter set %q (want 128 or compact)", name)
}

func writeJSON(path string, v interface{}, mode os.FileMode) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), mode)
}

func readJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	app := &cli.App{
		Name:  "csifish",
		Usage: "CSI-FiSh isogeny signatures over the CSIDH-512 class group",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Value: "csifish_keys",
				Usage: "directory holding key and signature files",
			},
			&cli.StringFlag{
				Name:  "params",
				Value: "128",
				Usage: "parameter set: 128 or compact",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "gen",
				Usage: "generate a key pair and write public.json and private.json",
				Action: func(c *cli.Context) error {
					return runGen(c, log)
				},
			},
			{
				Name:  "sign",
				Usage: "sign a message with private.json and write signature.json",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "message to sign", Required: true},
					&cli.IntFlag{Name: "workers", Value: 1, Usage: "commitment goroutines"},
				},
				Action: func(c *cli.Context) error {
					return runSign(c, log)
				},
			},
			{
				Name:  "verify",
				Usage: "verify signature.json against public.json",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "signed message", Required: true},
				},
				Action: func(c *cli.Context) error {
					return runVerify(c, log)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func runGen(c *cli.Context, log zerolog.Logger) error {
	params, err := paramSet(c.String("params"))
	if err != nil {
		return err
	}
	dir := c.String("dir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	start := time.Now()
	sk, err := csifish.GenerateKey(params)
	if err != nil {
		return err
	}
	skEnc := sk.Bytes()
	pkEnc := sk.Public().Bytes()

	err = writeJSON(filepath.Join(dir, "private.json"), privateFile{
		Params: c.String("params"),
		Secret: hex.EncodeToString(skEnc[:]),
	}, 0o600)
	if err != nil {
		return err
	}
	err = writeJSON(filepath.Join(dir, "public.json"), publicFile{
		Params: c.String("params"),
		Public: hex.EncodeToString(pkEnc[:]),
	}, 0o644)
	if err != nil {
		return err
	}

	log.Info().
		Str("dir", dir).
		Dur("elapsed", time.Since(start)).
		Msg("key pair written")
	return nil
}

func loadSecret(dir string) (*csifish.SecretKey, error) {
	var pf privateFile
	if err := readJSON(filepath.Join(dir, "private.json"), &pf); err != nil {
		return nil, err
	}
	params, err := paramSet(pf.Params)
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(pf.Secret)
	if err != nil {
		return nil, err
	}
	return csifish.DecodeSecretKey(params, raw)
}

func loadPublic(dir string) (*csifish.PublicKey, error) {
	var pf publicFile
	if err := readJSON(filepath.Join(dir, "public.json"), &pf); err != nil {
		return nil, err
	}
	params, err := paramSet(pf.Params)
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(pf.Public)
	if err != nil {
		return nil, err
	}
	return csifish.DecodePublicKey(params, raw)
}

func runSign(c *cli.Context, log zerolog.Logger) error {
	dir := c.String("dir")
	sk, err := loadSecret(dir)
	if err != nil {
		return err
	}

	var opts []csifish.SignOption
	if w := c.Int("workers"); w > 1 {
		opts = append(opts, csifish.WithWorkers(w))
	}

	start := time.Now()
	sig, err := sk.Sign([]byte(c.String("message")), opts...)
	if err != nil {
		return err
	}
	enc := sig.Bytes()

	var pf privateFile
	if err := readJSON(filepath.Join(dir, "private.json"), &pf); err != nil {
		return err
	}
	err = writeJSON(filepath.Join(dir, "signature.json"), signatureFile{
		Params:    pf.Params,
		Signature: hex.EncodeToString(enc),
	}, 0o644)
	if err != nil {
		return err
	}

	log.Info().
		Int("bytes", len(enc)).
		Int("responses", len(sig.Responses)).
		Dur("elapsed", time.Since(start)).
		Msg("signature written")
	if measure.Enabled {
		measure.Global.Dump()
		for _, e := range prof.SnapshotAndReset() {
			log.Info().Str("phase", e.Label).Dur("elapsed", e.Dur).Msg("timing")
		}
	}
	return nil
}

func runVerify(c *cli.Context, log zerolog.Logger) error {
	dir := c.String("dir")
	pk, err := loadPublic(dir)
	if err != nil {
		return err
	}

	var sf signatureFile
	if err := readJSON(filepath.Join(dir, "signature.json"), &sf); err != nil {
		return err
	}
	raw, err := hex.DecodeString(sf.Signature)
	if err != nil {
		return err
	}
	sig, err := csifish.ParseSignature(raw)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := pk.Verify([]byte(c.String("message")), sig); err != nil {
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("signature verified")
	return nil
}

// Package docvault implements the cryptographic core of the DocVault
// document protection service: the GOST R 34.12-2018 "Kuznechik" block
// cipher, the GOST R 34.11-2018 "Streebog" 512-bit hash, and an RSA
// engine with a bounded, parallel probabilistic prime search targeting
// 32768-bit moduli.
//
// Kuznechik implements crypto/cipher.Block and Streebog implements
// hash.Hash, so both compose with the standard library:
//
//	c, err := docvault.NewKuznechik(key)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gcm, err := cipher.NewGCM(c)
//
//	sum := docvault.Streebog512(data)
//
// Key generation is long-running and blocking; at the default modulus
// size a search takes days, so it is bounded and observable:
//
//	kp, err := docvault.GenerateKeyPair(ctx,
//	    docvault.WithProgress(func(p docvault.Progress) {
//	        log.Printf("worker %s: %d attempts in %s", p.Worker, p.Attempts, p.Elapsed)
//	    }))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ct, err := kp.Public().Encrypt(message)
package docvault

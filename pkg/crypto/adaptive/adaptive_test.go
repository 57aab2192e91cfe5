package adaptive

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return key
}

func TestCipher_RoundTrip(t *testing.T) {
	key := testKey(t)

	ciphers := map[string]func() (Cipher, error){
		"aes-gcm":  func() (Cipher, error) { return NewAESGCM(key) },
		"chacha20": func() (Cipher, error) { return NewChaCha20(key) },
		"adaptive": func() (Cipher, error) { return New(key) },
	}

	for name, mk := range ciphers {
		t.Run(name, func(t *testing.T) {
			c, err := mk()
			if err != nil {
				t.Fatalf("new cipher: %v", err)
			}

			plaintext := []byte("the quick brown fox")
			ad := []byte("record-key")

			ct, err := c.Encrypt(plaintext, ad)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			if bytes.Contains(ct, plaintext) {
				t.Error("ciphertext contains plaintext")
			}

			got, err := c.Decrypt(ct, ad)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("round trip = %q, want %q", got, plaintext)
			}
		})
	}
}

func TestCipher_TamperDetection(t *testing.T) {
	c, err := New(testKey(t))
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	ct, err := c.Encrypt([]byte("payload"), []byte("ad"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	t.Run("flipped bit", func(t *testing.T) {
		bad := append([]byte(nil), ct...)
		bad[len(bad)-1] ^= 0x01
		if _, err := c.Decrypt(bad, []byte("ad")); err == nil {
			t.Error("Decrypt accepted tampered ciphertext")
		}
	})

	t.Run("wrong additional data", func(t *testing.T) {
		if _, err := c.Decrypt(ct, []byte("other")); err == nil {
			t.Error("Decrypt accepted mismatched additional data")
		}
	})

	t.Run("truncated", func(t *testing.T) {
		if _, err := c.Decrypt(ct[:c.NonceSize()-1], []byte("ad")); err == nil {
			t.Error("Decrypt accepted truncated ciphertext")
		}
	})
}

func TestCipher_UniqueNonces(t *testing.T) {
	c, err := New(testKey(t))
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	a, _ := c.Encrypt([]byte("same"), nil)
	b, _ := c.Encrypt([]byte("same"), nil)
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same plaintext are identical")
	}
}

func TestNewWithType(t *testing.T) {
	key := testKey(t)

	c, err := NewWithType(key, CipherChaCha20)
	if err != nil {
		t.Fatalf("NewWithType: %v", err)
	}
	if c.Type() != CipherChaCha20 {
		t.Errorf("Type() = %q", c.Type())
	}

	if _, err := NewWithType(key, "des"); err == nil {
		t.Error("NewWithType accepted unknown cipher type")
	}
}

func TestNewAESGCM_BadKey(t *testing.T) {
	if _, err := NewAESGCM([]byte("short")); err == nil {
		t.Error("NewAESGCM accepted a 5-byte key")
	}
}

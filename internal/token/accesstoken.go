package token

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math/rand"
	"sort"
	"time"
)

// Version 006 RTC access token: an HMAC-SHA256 signature over the app ID,
// channel name, uid and a packed privilege message, wrapped with CRC32
// checksums of channel and uid and base64-encoded.

const tokenVersion = "006"

// Privilege keys understood by the media service.
const (
	privJoinChannel uint16 = 1
)

type accessToken struct {
	appID          string
	appCertificate string
	channelName    string
	uid            string
	ts             uint32
	salt           uint32
	privileges     map[uint16]uint32
}

func newAccessToken(appID, appCertificate, channelName, uid string) *accessToken {
	return &accessToken{
		appID:          appID,
		appCertificate: appCertificate,
		channelName:    channelName,
		uid:            uid,
		ts:             uint32(time.Now().Unix()) + 24*3600,
		salt:           rand.Uint32(),
		privileges:     make(map[uint16]uint32),
	}
}

func (t *accessToken) addPrivilege(privilege uint16, expireTs uint32) {
	t.privileges[privilege] = expireTs
}

func (t *accessToken) build() (string, error) {
	msg, err := t.packMessage()
	if err != nil {
		return "", fmt.Errorf("pack message: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(t.appCertificate))
	mac.Write([]byte(t.appID))
	mac.Write([]byte(t.channelName))
	mac.Write([]byte(t.uid))
	mac.Write(msg)
	signature := mac.Sum(nil)

	crcChannel := crc32.ChecksumIEEE([]byte(t.channelName))
	crcUID := crc32.ChecksumIEEE([]byte(t.uid))

	var content bytes.Buffer
	if err := packBytes(&content, signature); err != nil {
		return "", err
	}
	if err := packUint32(&content, crcChannel); err != nil {
		return "", err
	}
	if err := packUint32(&content, crcUID); err != nil {
		return "", err
	}
	if err := packBytes(&content, msg); err != nil {
		return "", err
	}

	return tokenVersion + t.appID + base64.StdEncoding.EncodeToString(content.Bytes()), nil
}

// packMessage serializes salt, expiry timestamp and the privilege map in
// ascending key order, all little-endian.
func (t *accessToken) packMessage() ([]byte, error) {
	var buf bytes.Buffer
	if err := packUint32(&buf, t.salt); err != nil {
		return nil, err
	}
	if err := packUint32(&buf, t.ts); err != nil {
		return nil, err
	}

	keys := make([]uint16, 0, len(t.privileges))
	for k := range t.privileges {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	if err := packUint16(&buf, uint16(len(keys))); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if err := packUint16(&buf, k); err != nil {
			return nil, err
		}
		if err := packUint32(&buf, t.privileges[k]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func packUint16(buf *bytes.Buffer, v uint16) error {
	return binary.Write(buf, binary.LittleEndian, v)
}

func packUint32(buf *bytes.Buffer, v uint32) error {
	return binary.Write(buf, binary.LittleEndian, v)
}

func packBytes(buf *bytes.Buffer, b []byte) error {
	if err := packUint16(buf, uint16(len(b))); err != nil {
		return err
	}
	_, err := buf.Write(b)
	return err
}

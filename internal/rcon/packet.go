// Package rcon implements the Source RCON wire protocol as spoken by the
// Squad dedicated server, including the unsolicited chat/event packets the
// server pushes outside of any request/response exchange.
package rcon

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	packetTypeResponse    = 0
	packetTypeChat        = 1
	packetTypeExecCommand = 2
	packetTypeAuthReply   = 2
	packetTypeAuth        = 3

	// packet size field excludes itself: id + type + body + two null bytes
	packetOverhead = 10
	maxPacketSize  = 4096 + packetOverhead
)

type packet struct {
	ID   int32
	Type int32
	Body string
}

func writePacket(w io.Writer, p packet) error {
	size := int32(len(p.Body) + packetOverhead)
	buf := make([]byte, 4+size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(size))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.ID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Type))
	copy(buf[12:], p.Body)
	// trailing two null bytes already zeroed
	_, err := w.Write(buf)
	return err
}

func readPacket(r io.Reader) (packet, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return packet{}, err
	}
	size := int32(binary.LittleEndian.Uint32(sizeBuf[:]))
	if size < packetOverhead || size > maxPacketSize {
		return packet{}, fmt.Errorf("invalid packet size %d", size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return packet{}, err
	}

	p := packet{
		ID:   int32(binary.LittleEndian.Uint32(body[0:4])),
		Type: int32(binary.LittleEndian.Uint32(body[4:8])),
	}
	payload := body[8:]
	// strip the two terminating null bytes
	for len(payload) > 0 && payload[len(payload)-1] == 0 {
		payload = payload[:len(payload)-1]
	}
	p.Body = string(payload)
	return p, nil
}

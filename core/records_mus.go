package core

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the record wire format. Field order is part of the
// format; changing it breaks every existing record file and store.
var (
	IDMUS      = idSer{}
	BoxMUS     = boxSer{}
	ExampleMUS = exampleSer{}
)

var (
	floatsMUS  = ord.NewSliceSer[float32](raw.Float32)
	boxesMUS   = ord.NewSliceSer[Box](BoxMUS)
	classesMUS = ord.NewSliceSer[string](ord.String)
	masksMUS   = ord.NewSliceSer[[]float32](floatsMUS)
	metaMUS    = ord.NewMapSer[string, string](ord.String, ord.String)
)

var (
	_ mus.Serializer[ID]      = IDMUS
	_ mus.Serializer[Box]     = BoxMUS
	_ mus.Serializer[Example] = ExampleMUS
)

type idSer struct{}

func (idSer) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

func (idSer) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type boxSer struct{}

func (boxSer) Marshal(v Box, bs []byte) (n int) {
	n = raw.Float32.Marshal(v.YMin, bs)
	n += raw.Float32.Marshal(v.XMin, bs[n:])
	n += raw.Float32.Marshal(v.YMax, bs[n:])
	n += raw.Float32.Marshal(v.XMax, bs[n:])
	return n
}

func (boxSer) Unmarshal(bs []byte) (v Box, n int, err error) {
	var n1 int
	if v.YMin, n, err = raw.Float32.Unmarshal(bs); err != nil {
		return
	}
	if v.XMin, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.YMax, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.XMax, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (boxSer) Size(v Box) int {
	return raw.Float32.Size(v.YMin) + raw.Float32.Size(v.XMin) +
		raw.Float32.Size(v.YMax) + raw.Float32.Size(v.XMax)
}

func (boxSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 4; i++ {
		if n1, err = raw.Float32.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return n, nil
}

type exampleSer struct{}

func (exampleSer) Marshal(v Example, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.SourceId, bs[n:])
	n += floatsMUS.Marshal(v.Image, bs[n:])
	n += varint.Int.Marshal(v.Height, bs[n:])
	n += varint.Int.Marshal(v.Width, bs[n:])
	n += varint.Int.Marshal(v.Channels, bs[n:])
	n += floatsMUS.Marshal(v.Extra, bs[n:])
	n += boxesMUS.Marshal(v.Boxes, bs[n:])
	n += classesMUS.Marshal(v.Classes, bs[n:])
	n += masksMUS.Marshal(v.Masks, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.Recorded, bs[n:])
	n += metaMUS.Marshal(v.Metadata, bs[n:])
	return n
}

func (exampleSer) Unmarshal(bs []byte) (v Example, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.SourceId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Image, n1, err = floatsMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Height, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Width, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Channels, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Extra, n1, err = floatsMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Boxes, n1, err = boxesMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Classes, n1, err = classesMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Masks, n1, err = masksMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Recorded, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Metadata, n1, err = metaMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (exampleSer) Size(v Example) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.SourceId)
	size += floatsMUS.Size(v.Image)
	size += varint.Int.Size(v.Height)
	size += varint.Int.Size(v.Width)
	size += varint.Int.Size(v.Channels)
	size += floatsMUS.Size(v.Extra)
	size += boxesMUS.Size(v.Boxes)
	size += classesMUS.Size(v.Classes)
	size += masksMUS.Size(v.Masks)
	size += raw.TimeUnixMicro.Size(v.Recorded)
	size += metaMUS.Size(v.Metadata)
	return size
}

func (exampleSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	skips := []func([]byte) (int, error){
		IDMUS.Skip,
		ord.String.Skip,
		floatsMUS.Skip,
		varint.Int.Skip,
		varint.Int.Skip,
		varint.Int.Skip,
		floatsMUS.Skip,
		boxesMUS.Skip,
		classesMUS.Skip,
		masksMUS.Skip,
		raw.TimeUnixMicro.Skip,
		metaMUS.Skip,
	}
	for _, skip := range skips {
		if n1, err = skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return n, nil
}

// MarshalExample serializes an Example to bytes.
func MarshalExample(example *Example) []byte {
	buf := make([]byte, ExampleMUS.Size(*example))
	ExampleMUS.Marshal(*example, buf)
	return buf
}

// UnmarshalExample deserializes an Example from bytes.
func UnmarshalExample(data []byte) (*Example, error) {
	example, _, err := ExampleMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &example, nil
}

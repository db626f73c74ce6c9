package message

import "strings"

const (
	EMPropBold          = 0x1
	EMPropItalic        = 0x2
	EMPropUnderline     = 0x4
	EMPropStrikeThrough = 0x8
	EMPropMonospace     = 0x10
	EMPropSpoiler       = 0x20
	EMPropAll           = EMPropBold | EMPropItalic | EMPropUnderline | EMPropStrikeThrough | EMPropMonospace | EMPropSpoiler
)

//IRC formatting control codes
const (
	IRCBold          = '\x02'
	IRCItalic        = '\x1D'
	IRCUnderline     = '\x1F'
	IRCStrikeThrough = '\x1E'
	IRCMonospace     = '\x11'
	IRCReset         = '\x0F'
)

var (
	DefaultProperties = Properties{
		EnableList:  0,
		InheritList: EMPropAll,
	}

	ResetProperties = Properties{
		EnableList:  0,
		InheritList: 0,
	}

	ircFormats = []struct {
		code rune
		prop PropertyList
	}{
		{IRCBold, EMPropBold},
		{IRCItalic, EMPropItalic},
		{IRCUnderline, EMPropUnderline},
		{IRCStrikeThrough, EMPropStrikeThrough},
		{IRCMonospace, EMPropMonospace},
	}

	ansiFormats = []struct {
		prop PropertyList
		code string
	}{
		{EMPropBold, "1"},
		{EMPropItalic, "3"},
		{EMPropUnderline, "4"},
		{EMPropStrikeThrough, "9"},
	}
)

type PropertyList uint32

type Properties struct {
	EnableList  PropertyList
	InheritList PropertyList
}

type MessageNode struct {
	Props Properties
	Text  string
}

type Message []MessageNode

func (msg Message) Walk(callback func(text string, currentProps, lastProps PropertyList)) {
	currentProperties := PropertyList(0)

	for _, node := range msg {
		oldProperties := currentProperties

		applyMask := ^node.Props.InheritList
		setMask := applyMask & node.Props.EnableList
		unsetMask := applyMask & currentProperties
		currentProperties ^= unsetMask
		currentProperties |= setMask

		callback(node.Text, currentProperties, oldProperties)
	}
}

//Flatten resolves inheritance so that every node carries its effective properties and inherits nothing
func (msg Message) Flatten() Message {
	flat := make(Message, 0, len(msg))

	msg.Walk(func(text string, currentProps, lastProps PropertyList) {
		flat = append(flat, MessageNode{
			Props: Properties{EnableList: currentProps},
			Text:  text,
		})
	})

	return flat
}

func PlaintextToMessage(text string) Message {
	return Message{MessageNode{
		Props: ResetProperties,
		Text:  text,
	}}
}

func MessageToPlaintext(msg Message) string {
	builder := strings.Builder{}

	msg.Walk(func(text string, currentProps, lastProps PropertyList) {
		builder.WriteString(text)
	})

	return builder.String()
}

func (msg Message) String() string {
	return MessageToPlaintext(msg)
}

func (msg Message) Len() int {
	i := 0
	msg.Walk(func(text string, currentProps, lastProps PropertyList) {
		i += len(text)
	})
	return i
}

//FromIRC splits a line containing IRC formatting codes into nodes, toggling properties at each code
func FromIRC(str string) Message {
	msg := make(Message, 0)

	currentFormat := PropertyList(0)
	currentText := make([]rune, 0)

	tryAppend := func() {
		if len(currentText) > 0 {
			msg = append(msg, MessageNode{
				Props: Properties{
					EnableList:  currentFormat,
					InheritList: 0,
				},
				Text: string(currentText),
			})
			currentText = make([]rune, 0)
		}
	}

	for _, r := range str {
		if f, ok := ircFormat(r); ok {
			tryAppend()
			currentFormat ^= f
		} else if r == IRCReset {
			tryAppend()
			currentFormat = 0
		} else {
			currentText = append(currentText, r)
		}
	}

	tryAppend()

	return msg
}

//ToIRC is the inverse of FromIRC, emitting a control code for every property that flips between nodes
func (msg Message) ToIRC() string {
	builder := strings.Builder{}

	msg.Walk(func(text string, currentProps, lastProps PropertyList) {
		changed := currentProps ^ lastProps
		for _, f := range ircFormats {
			if changed&f.prop != 0 {
				builder.WriteRune(f.code)
			}
		}
		builder.WriteString(text)
	})

	return builder.String()
}

func ircFormat(r rune) (PropertyList, bool) {
	for _, f := range ircFormats {
		if f.code == r {
			return f.prop, true
		}
	}
	return 0, false
}

//ToANSI renders the message with terminal escape sequences
func (msg Message) ToANSI() string {
	builder := strings.Builder{}
	dirty := false

	msg.Walk(func(text string, currentProps, lastProps PropertyList) {
		if currentProps != lastProps {
			builder.WriteString("\x1b[0m")
			dirty = false
			for _, f := range ansiFormats {
				if currentProps&f.prop != 0 {
					builder.WriteString("\x1b[" + f.code + "m")
					dirty = true
				}
			}
		}
		builder.WriteString(text)
	})

	if dirty {
		builder.WriteString("\x1b[0m")
	}

	return builder.String()
}

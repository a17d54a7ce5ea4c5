package handler

import "github.com/bwmarrin/discordgo"

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

type baseSlashCommand struct{}

func (b *baseSlashCommand) getOptionMap(interaction *discordgo.Interaction) optionMap {
	options := interaction.ApplicationCommandData().Options
	m := make(optionMap, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// stringOption は未指定または型違いなら空文字を返す
func (m optionMap) stringOption(name string) string {
	opt, ok := m[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionString {
		return ""
	}
	return opt.StringValue()
}

// intOption は未指定または型違いなら0を返す
func (m optionMap) intOption(name string) int {
	opt, ok := m[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionInteger {
		return 0
	}
	return int(opt.IntValue())
}

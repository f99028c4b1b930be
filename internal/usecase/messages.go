package usecase

// Textos exibidos ao operador. Detalhes técnicos nunca aparecem aqui.
const (
	MsgWelcome     = "Bem-vindo de volta!"
	MsgLoginFailed = "Erro ao entrar. Verifique email e senha."
	MsgLoggedOut   = "Você saiu do sistema."
	MsgLoadFailed  = "Erro ao carregar dados."
	MsgSaved       = "Salvo com sucesso!"
	MsgSaveFailed  = "Erro ao salvar."
	MsgUpdated     = "Atualizado!"
	MsgUpdateFail  = "Erro ao atualizar."
	MsgDeleted     = "Excluído."
	MsgDeleteFail  = "Erro ao excluir."
	MsgNotFound    = "Proposta não encontrada."
)

package server

// PingResponse is the response for the hola command
type PingResponse struct {
	Respuesta string `json:"respuesta"`
	Tenant    string `json:"tenant"`
	Hora      string `json:"hora"`
}

// EmitResponse is the response for the emitir command
type EmitResponse struct {
	TipoDeComprobante int    `json:"tipo_de_comprobante"`
	Serie             string `json:"serie"`
	Numero            int    `json:"numero"`
	AceptadaPorSunat  bool   `json:"aceptada_por_sunat"`
	SunatDescription  string `json:"sunat_description"`
	SunatResponseCode string `json:"sunat_responsecode"`
	CodigoHash        string `json:"codigo_hash"`
	Total             string `json:"total"`
}

// CancelResponse is the response for the baja command
type CancelResponse struct {
	TipoDeComprobante int    `json:"tipo_de_comprobante"`
	Serie             string `json:"serie"`
	Numero            int    `json:"numero"`
	SunatTicketNumero string `json:"sunat_ticket_numero"`
	AceptadaPorSunat  bool   `json:"aceptada_por_sunat"`
}

// MailResponse is the response for the correo command
type MailResponse struct {
	Enviado      bool   `json:"enviado"`
	ClienteEmail string `json:"cliente_email"`
	Envios       int    `json:"envios"`
}

// TaxpayerResponse is the response for the consultar_ruc command
type TaxpayerResponse struct {
	RUC         string `json:"ruc"`
	RazonSocial string `json:"razon_social"`
	Tipo        string `json:"tipo"`
	Estado      string `json:"estado"`
	Condicion   string `json:"condicion"`
}
